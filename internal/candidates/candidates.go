// Package candidates implements the useful-transition generator of
// spec.md §4.6: for a given (state, goal) pair, it enumerates the bounded
// set of transitions worth trying during A* expansion, sacrificing
// completeness where doing so keeps the branching factor tractable (the
// planner's own is_valid/reachable filter catches anything unsound this
// generator still proposes).
package candidates

import (
	"tailforge/internal/machine"
	"tailforge/internal/transition"
)

// Useful returns the candidate transitions for expanding state toward goal.
func Useful(state, goal *machine.State) []transition.Transition {
	var out []transition.Transition

	for lit := range goal.Literals() {
		for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
			out = append(out, transition.NewSet(dest, lit))
		}
	}

	for source := machine.Register(0); source < machine.NumRegisters; source++ {
		if !state.GetRegister(source).IsSpecified() {
			continue
		}
		for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
			if dest != source {
				out = append(out, transition.NewCopy(dest, source))
			}
			if source < dest && state.GetRegister(dest).IsSpecified() {
				out = append(out, transition.NewSwap(dest, source))
			}
		}

		if index, baseOffset, ok := state.GetRegister(source).Reference(); ok {
			alloc := state.Allocations[index]
			for n := 0; n < len(alloc); n++ {
				offset := n - baseOffset
				slot, slotOK := state.GetReference(source, offset)
				for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
					if slotOK && slot.IsSpecified() {
						out = append(out, transition.NewRead(dest, source, offset))
					}
					if state.GetRegister(dest).IsSpecified() {
						out = append(out, transition.NewWrite(source, offset, dest))
					}
				}
			}
		}
	}

	for size := range goal.AllocSizes() {
		for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
			out = append(out, transition.NewAlloc(dest, size))
		}
	}

	for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
		if _, _, ok := state.GetRegister(dest).Reference(); ok {
			out = append(out, transition.NewDrop(dest))
		}
	}

	return out
}
