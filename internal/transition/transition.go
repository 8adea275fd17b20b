// Package transition implements the seven primitive state transitions of
// spec.md §4.2: Set, Copy, Swap, Read, Write, Alloc, Drop.
package transition

import (
	"fmt"

	"tailforge/internal/machine"
	"tailforge/internal/value"
)

// Kind discriminates which of the seven primitive transitions a Transition
// value represents.
type Kind uint8

const (
	Set Kind = iota
	Copy
	Swap
	Read
	Write
	Alloc
	Drop
)

func (k Kind) String() string {
	switch k {
	case Set:
		return "Set"
	case Copy:
		return "Copy"
	case Swap:
		return "Swap"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Alloc:
		return "Alloc"
	case Drop:
		return "Drop"
	default:
		return "?"
	}
}

// Transition is one primitive instruction. Only the fields relevant to
// Kind are meaningful; it is kept as one flat struct (rather than seven
// types behind an interface) so the planner and candidate generator can
// pass it by value without boxing.
type Transition struct {
	Kind   Kind
	Dest   machine.Register
	Source machine.Register
	Value  uint64 // Set
	Offset int    // Read / Write, signed 8-byte units
	Size   int    // Alloc
}

func NewSet(dest machine.Register, val uint64) Transition {
	return Transition{Kind: Set, Dest: dest, Value: val}
}

func NewCopy(dest, source machine.Register) Transition {
	return Transition{Kind: Copy, Dest: dest, Source: source}
}

func NewSwap(dest, source machine.Register) Transition {
	return Transition{Kind: Swap, Dest: dest, Source: source}
}

func NewRead(dest, source machine.Register, offset int) Transition {
	return Transition{Kind: Read, Dest: dest, Source: source, Offset: offset}
}

func NewWrite(dest machine.Register, offset int, source machine.Register) Transition {
	return Transition{Kind: Write, Dest: dest, Offset: offset, Source: source}
}

func NewAlloc(dest machine.Register, size int) Transition {
	return Transition{Kind: Alloc, Dest: dest, Size: size}
}

func NewDrop(dest machine.Register) Transition {
	return Transition{Kind: Drop, Dest: dest}
}

// Applies reports whether t's precondition holds against state, per the
// table in spec.md §4.2. It never mutates state.
func (t Transition) Applies(state *machine.State) bool {
	switch t.Kind {
	case Set:
		return true
	case Copy:
		return state.GetRegister(t.Source).IsSpecified()
	case Swap:
		return state.GetRegister(t.Dest).IsSpecified() || state.GetRegister(t.Source).IsSpecified()
	case Read:
		slot, ok := state.GetReference(t.Source, t.Offset)
		return ok && slot.IsSpecified()
	case Write:
		if !state.GetRegister(t.Source).IsSpecified() {
			return false
		}
		_, ok := state.GetReference(t.Dest, t.Offset)
		return ok
	case Alloc:
		return t.Size > 0
	case Drop:
		_, _, ok := state.GetRegister(t.Dest).Reference()
		return ok
	default:
		return false
	}
}

// Apply mutates state in place, producing the effect described in
// spec.md §4.2. Callers must check Applies first; Apply panics on a
// precondition violation since that indicates a defect in the caller
// (the candidate generator and planner never call Apply on a transition
// whose Applies returned false).
func (t Transition) Apply(state *machine.State) {
	if !t.Applies(state) {
		panic(fmt.Sprintf("transition %s does not apply to state", t.Kind))
	}
	switch t.Kind {
	case Set:
		state.Registers[t.Dest] = value.NewLiteral(t.Value)
	case Copy:
		state.Registers[t.Dest] = state.Registers[t.Source]
	case Swap:
		state.Registers[t.Dest], state.Registers[t.Source] = state.Registers[t.Source], state.Registers[t.Dest]
	case Read:
		v, _ := state.GetReference(t.Source, t.Offset)
		state.Registers[t.Dest] = v
	case Write:
		index, base, _ := state.Registers[t.Dest].Reference()
		state.Allocations[index][base+t.Offset] = state.Registers[t.Source]
	case Alloc:
		index := len(state.Allocations)
		alloc := make(machine.Allocation, t.Size)
		state.Allocations = append(state.Allocations, alloc)
		state.Registers[t.Dest] = value.NewReference(index, 0)
	case Drop:
		applyDrop(state, t.Dest)
	}
}

// After returns the State produced by applying t to a deep copy of state,
// leaving state untouched.
func (t Transition) After(state *machine.State) *machine.State {
	clone := state.Clone()
	t.Apply(clone)
	return clone
}

// applyDrop implements the swap-remove described in spec.md §3: the last
// allocation replaces the dropped one, stale indices pointing to the
// moved allocation are rewritten, and references to the dropped
// allocation become Unspecified.
func applyDrop(state *machine.State, dest machine.Register) {
	dropIdx, _, _ := state.Registers[dest].Reference()
	lastIdx := len(state.Allocations) - 1

	rewrite := func(v value.Value) value.Value {
		idx, off, ok := v.Reference()
		if !ok {
			return v
		}
		switch idx {
		case dropIdx:
			return value.None
		case lastIdx:
			if lastIdx != dropIdx {
				return value.NewReference(dropIdx, off)
			}
			return v
		default:
			return v
		}
	}

	for i := range state.Registers {
		state.Registers[i] = rewrite(state.Registers[i])
	}
	for i := range state.Flags {
		state.Flags[i] = rewrite(state.Flags[i])
	}
	for _, alloc := range state.Allocations {
		for i := range alloc {
			alloc[i] = rewrite(alloc[i])
		}
	}

	if dropIdx != lastIdx {
		state.Allocations[dropIdx] = state.Allocations[lastIdx]
	}
	state.Allocations = state.Allocations[:lastIdx]
}

func (t Transition) String() string {
	switch t.Kind {
	case Set:
		return fmt.Sprintf("Set{dest: r%d, value: 0x%x}", t.Dest, t.Value)
	case Copy:
		return fmt.Sprintf("Copy{dest: r%d, source: r%d}", t.Dest, t.Source)
	case Swap:
		return fmt.Sprintf("Swap{dest: r%d, source: r%d}", t.Dest, t.Source)
	case Read:
		return fmt.Sprintf("Read{dest: r%d, source: r%d, offset: %d}", t.Dest, t.Source, t.Offset)
	case Write:
		return fmt.Sprintf("Write{dest: r%d, offset: %d, source: r%d}", t.Dest, t.Offset, t.Source)
	case Alloc:
		return fmt.Sprintf("Alloc{dest: r%d, size: %d}", t.Dest, t.Size)
	case Drop:
		return fmt.Sprintf("Drop{dest: r%d}", t.Dest)
	default:
		return "<invalid transition>"
	}
}
