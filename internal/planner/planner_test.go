package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailforge/internal/bump"
	"tailforge/internal/machine"
	"tailforge/internal/transition"
	"tailforge/internal/value"
)

func applyAll(state *machine.State, trs []transition.Transition) *machine.State {
	cur := state
	for _, t := range trs {
		cur = t.After(cur)
	}
	return cur
}

func TestPlanSimpleSet(t *testing.T) {
	bc := bump.Default()
	initial := machine.New()
	goal := machine.New()
	goal.Registers[0] = value.NewLiteral(3)

	trs, err := Plan(initial, goal, bc)
	require.NoError(t, err)
	require.NotEmpty(t, trs)

	result := applyAll(initial, trs)
	assert.True(t, result.Satisfies(goal))
}

func TestPlanAllocWriteSet(t *testing.T) {
	bc := bump.Default()
	initial := machine.New()
	initial.Registers[0] = value.NewSymbol(5)

	goal := machine.New()
	goal.Registers[0] = value.NewLiteral(3)
	goal.Registers[1] = value.NewReference(0, 0)
	goal.Allocations = []machine.Allocation{{value.NewSymbol(5)}}

	trs, err := Plan(initial, goal, bc)
	require.NoError(t, err)
	require.NotEmpty(t, trs)

	result := applyAll(initial, trs)
	assert.True(t, result.IsValid())
	assert.True(t, result.Satisfies(goal))
}

func TestPlanUnreachableGoalFails(t *testing.T) {
	bc := bump.Default()
	initial := machine.New()
	goal := machine.New()
	goal.Registers[0] = value.NewSymbol(99)

	_, err := Plan(initial, goal, bc)
	require.Error(t, err)
	var unreachable *UnreachableError
	assert.ErrorAs(t, err, &unreachable)
}

func TestPlanNoOpWhenAlreadySatisfied(t *testing.T) {
	bc := bump.Default()
	initial := machine.New()
	goal := machine.New()

	trs, err := Plan(initial, goal, bc)
	require.NoError(t, err)
	assert.Empty(t, trs)
}
