// Package cost implements the cost model of spec.md §4.3: encoded
// instruction size in bytes, with clock-cycle count as a tiebreak.
package cost

import (
	"tailforge/internal/bump"
	"tailforge/internal/emit"
	"tailforge/internal/transition"
)

// Weights are the two coefficients spec.md §4.3 explicitly allows
// implementers to change ("Implementers targeting speed may swap the
// weights; the planner and heuristic only assume cost is non-negative").
// The default makes size dominate and cycles break ties.
type Weights struct {
	Size   uint64
	Cycles uint64
}

// Default matches spec.md §4.3: cost(t) = size(t)·10000 + cycles(t).
var Default = Weights{Size: 10000, Cycles: 1}

// Cycles returns the per-variant throughput estimate of spec.md §4.3:
// Set 3, Copy 3, Swap 6, Read 6, Write 12, Alloc 24, Drop 24. Copy/Swap
// of a register with itself cost 0 since the emitter produces no bytes
// and the CPU executes nothing.
func Cycles(t transition.Transition) uint64 {
	switch t.Kind {
	case transition.Set:
		return 3
	case transition.Copy:
		if t.Dest == t.Source {
			return 0
		}
		return 3
	case transition.Swap:
		if t.Dest == t.Source {
			return 0
		}
		return 6
	case transition.Read:
		return 6
	case transition.Write:
		return 12
	case transition.Alloc:
		return 24
	case transition.Drop:
		return 24
	default:
		return 0
	}
}

// Size returns the number of bytes the emitter produces for t, computed
// by actually running the emitter against an offset-only sink — this is
// the ground truth spec.md §4.3 requires; no size table is hand
// -maintained anywhere in this repository.
func Size(t transition.Transition, bc bump.Contract) int {
	sink := emit.NewOffsetSink()
	emit.Emit(sink, t, bc)
	return sink.Offset()
}

// Cost computes cost(t) = size(t)·w.Size + cycles(t)·w.Cycles.
func Cost(t transition.Transition, bc bump.Contract, w Weights) uint64 {
	return uint64(Size(t, bc))*w.Size + Cycles(t)*w.Cycles
}
