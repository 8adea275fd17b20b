// Package heuristic implements the A* lower-bound estimate of spec.md
// §4.5: the admissible-in-practice "sum of per-slot minimum cost" relaxation
// that ignores that a single transition can sometimes satisfy more than one
// goal slot at once.
package heuristic

import (
	"math"

	"tailforge/internal/bump"
	"tailforge/internal/cost"
	"tailforge/internal/machine"
	"tailforge/internal/transition"
	"tailforge/internal/value"
)

// Max is returned for a goal that is unreachable from the current state
// (spec.md §4.5: "an unreachable goal's distance is the representable
// maximum, forcing the planner to fail fast rather than search forever").
const Max = uint64(math.MaxUint64)

// genericMoveCost is the cheapest a Copy or Swap can ever be, independent of
// which two registers are involved: the single-byte-opcode XCHG-with-
// accumulator form of Swap (spec.md §4.4) undercuts even a same-size Copy.
func genericMoveCost(bc bump.Contract) uint64 {
	c := cost.Cost(transition.NewCopy(1, 0), bc, cost.Default)
	if s := cost.Cost(transition.NewSwap(1, 0), bc, cost.Default); s < c {
		c = s
	}
	return c
}

// RegisterSetCost estimates the cheapest single transition that could place
// val into dest (or, if dest is nil, into some scratch register — used when
// estimating the cost of writing val into an allocation slot rather than a
// named register), per spec.md §4.5(1).
func RegisterSetCost(state *machine.State, dest *machine.Register, val value.Value, bc bump.Contract) uint64 {
	if !val.IsSpecified() {
		return 0
	}
	if dest != nil && state.GetRegister(*dest).Equal(val) {
		return 0
	}
	if _, _, ok := val.Reference(); ok {
		// Assume the Reference exists somewhere and can be moved into
		// place; its construction cost is charged by Distance's
		// allocation term instead (spec.md §4.5(1c)).
		return genericMoveCost(bc)
	}

	best := Max
	for source := machine.Register(0); source < machine.NumRegisters; source++ {
		if !val.Equal(state.GetRegister(source)) {
			continue
		}
		var c uint64
		switch {
		case dest == nil:
			c = 0
		case *dest == source:
			c = 0
		default:
			c = cost.Cost(transition.NewCopy(*dest, source), bc, cost.Default)
			if s := cost.Cost(transition.NewSwap(*dest, source), bc, cost.Default); s < c {
				c = s
			}
		}
		if c < best {
			best = c
		}
		if best == 0 {
			return 0
		}
	}

	destReg := machine.Register(0)
	if dest != nil {
		destReg = *dest
	}

	if lit, ok := val.Literal(); ok {
		c := cost.Cost(transition.NewSet(destReg, lit), bc, cost.Default)
		if c < best {
			best = c
		}
	}

	readCost := cost.Cost(transition.NewRead(destReg, 0, 0), bc, cost.Default)
	if best <= readCost {
		return best
	}
	for _, alloc := range state.Allocations {
		for _, v := range alloc {
			if v.Equal(val) {
				return readCost
			}
		}
	}
	return best
}

// Distance is the admissible heuristic h(state, goal): the sum, over every
// goal register and every goal allocation, of the cheapest single change
// that would bring it into line, computed against the CURRENT state (never
// against an intermediate state the estimate itself proposes). Flags are
// never a transition's Dest (spec.md §4.2's seven primitives only ever
// target registers, allocations, and the allocation vector), so a goal flag
// requirement contributes nothing here — as in the state this was derived
// from, flags are out of scope for direct construction.
//
// If goal is not Reachable from state (a goal Symbol state can never
// fabricate), Distance returns Max so the planner fails fast rather than
// exhausting the search space.
func Distance(state, goal *machine.State, bc bump.Contract) uint64 {
	if !state.Reachable(goal) {
		return Max
	}

	var total uint64
	for i := machine.Register(0); i < machine.NumRegisters; i++ {
		reg := i
		total += RegisterSetCost(state, &reg, goal.GetRegister(i), bc)
	}

	writeCost := cost.Cost(transition.NewWrite(0, 0, 0), bc, cost.Default)
	moveCost := genericMoveCost(bc)
	for _, goalAlloc := range goal.Allocations {
		allocCost := cost.Cost(transition.NewAlloc(0, len(goalAlloc)), bc, cost.Default)
		for _, v := range goalAlloc {
			if v.IsSpecified() {
				allocCost += writeCost + RegisterSetCost(state, nil, v, bc)
			}
		}
		// Alloc writes its result register in place, which the §4.5(1)
		// register-set sum already charged for — subtract one generic
		// move so the fresh-construction branch doesn't double-count it.
		if allocCost >= moveCost {
			allocCost -= moveCost
		} else {
			allocCost = 0
		}

		for _, ours := range state.Allocations {
			if len(ours) != len(goalAlloc) {
				continue
			}
			var changeCost uint64
			for k := range goalAlloc {
				gv := goalAlloc[k]
				if !gv.IsSpecified() || ours[k].Equal(gv) {
					continue
				}
				changeCost += writeCost + RegisterSetCost(state, nil, gv, bc)
			}
			if changeCost < allocCost {
				allocCost = changeCost
			}
		}

		total += allocCost
	}
	return total
}
