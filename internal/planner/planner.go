// Package planner implements the A* search of spec.md §4.7: the core
// algorithm that turns a (initial, goal) machine-state pair into the
// minimum-cost sequence of transitions realizing it.
package planner

import (
	"container/heap"
	"fmt"

	"tailforge/internal/bump"
	"tailforge/internal/candidates"
	"tailforge/internal/cost"
	"tailforge/internal/heuristic"
	"tailforge/internal/machine"
	"tailforge/internal/transition"
)

// UnreachableError is returned when the open set empties before goal
// satisfaction: per spec.md §4.7, this is a fatal, programmer-visible
// error — the declaration that produced goal cannot be compiled from
// initial with any sequence of the seven primitives.
type UnreachableError struct {
	Initial       *machine.State
	Goal          *machine.State
	NodesExplored int
}

func (e *UnreachableError) Error() string {
	return "planner: goal is unreachable from the initial state"
}

type node struct {
	state *machine.State
	key   string
	g     uint64
	f     uint64
	index int
}

type openQueue []*node

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].g > q[j].g // on tied f, prefer the deeper (cheaper-h) node
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}
func (q *openQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *openQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// Plan runs A* from initial to goal using the default cost weights and
// returns the minimum-cost sequence of transitions. bc supplies the bump
// allocator contract the cost model and emitter need for Alloc sizing.
func Plan(initial, goal *machine.State, bc bump.Contract) ([]transition.Transition, error) {
	return PlanWithWeights(initial, goal, bc, cost.Default)
}

// PlanWithWeights is Plan with caller-supplied cost weights (spec.md §4.3:
// "Implementers targeting speed may swap the weights").
func PlanWithWeights(initial, goal *machine.State, bc bump.Contract, weights cost.Weights) ([]transition.Transition, error) {
	transitions, _, err := PlanWithStats(initial, goal, bc, weights)
	return transitions, err
}

// PlanWithStats is PlanWithWeights plus the number of A* nodes the search
// closed, for cmd/tailforge-plan's debug reporting (spec.md §8's "concrete
// scenarios" call for counting nodes explored on both success and failure).
func PlanWithStats(initial, goal *machine.State, bc bump.Contract, weights cost.Weights) ([]transition.Transition, int, error) {
	startKey := initial.Key()

	cameFrom := map[string]*machine.State{}
	bestG := map[string]uint64{startKey: 0}
	bestState := map[string]*machine.State{startKey: initial}

	open := &openQueue{}
	heap.Init(open)
	heap.Push(open, &node{
		state: initial,
		key:   startKey,
		g:     0,
		f:     heuristic.Distance(initial, goal, bc),
	})

	closed := map[string]bool{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if closed[current.key] {
			continue
		}
		closed[current.key] = true

		if current.state.Satisfies(goal) {
			transitions, err := reconstructTransitions(startKey, current.key, cameFrom, bestState, goal, bc, weights)
			return transitions, len(closed), err
		}

		for _, t := range candidates.Useful(current.state, goal) {
			if !t.Applies(current.state) {
				continue
			}
			next := t.After(current.state)
			if !next.IsValid() || !next.Reachable(goal) {
				continue
			}

			nextKey := next.Key()
			if closed[nextKey] {
				continue
			}

			g := current.g + cost.Cost(t, bc, weights)
			if prev, ok := bestG[nextKey]; ok && g >= prev {
				continue
			}

			bestG[nextKey] = g
			bestState[nextKey] = next
			cameFrom[nextKey] = current.state
			heap.Push(open, &node{
				state: next,
				key:   nextKey,
				g:     g,
				f:     g + heuristic.Distance(next, goal, bc),
			})
		}
	}

	return nil, len(closed), &UnreachableError{Initial: initial, Goal: goal, NodesExplored: len(closed)}
}

// reconstructTransitions recovers the path of states from cameFrom, then —
// per spec.md §4.7 — for each consecutive (from, to) pair, searches from's
// useful-transitions for the cheapest one whose post-state equals to.
func reconstructTransitions(startKey, goalKey string, cameFrom map[string]*machine.State, bestState map[string]*machine.State, goal *machine.State, bc bump.Contract, weights cost.Weights) ([]transition.Transition, error) {
	var stateKeys []string
	for k := goalKey; ; {
		stateKeys = append([]string{k}, stateKeys...)
		if k == startKey {
			break
		}
		parent, ok := cameFrom[k]
		if !ok {
			break
		}
		k = parent.Key()
	}

	out := make([]transition.Transition, 0, len(stateKeys)-1)
	for i := 0; i+1 < len(stateKeys); i++ {
		from := bestState[stateKeys[i]]
		to := bestState[stateKeys[i+1]]

		var best *transition.Transition
		var bestCost uint64
		for _, t := range candidates.Useful(from, goal) {
			if !t.Applies(from) {
				continue
			}
			candidate := t.After(from)
			if !candidate.Equal(to) {
				continue
			}
			c := cost.Cost(t, bc, weights)
			if best == nil || c < bestCost {
				tCopy := t
				best = &tCopy
				bestCost = c
			}
		}
		if best == nil {
			return nil, fmt.Errorf("planner: could not reproduce transition between consecutive path states")
		}
		out = append(out, *best)
	}
	return out, nil
}
