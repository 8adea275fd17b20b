package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tailforge/internal/machine"
	"tailforge/internal/transition"
	"tailforge/internal/value"
)

func contains(list []transition.Transition, want transition.Transition) bool {
	for _, t := range list {
		if t == want {
			return true
		}
	}
	return false
}

func TestSetGeneratedForEveryGoalLiteralAndDest(t *testing.T) {
	state := machine.New()
	goal := machine.New()
	goal.Registers[0] = value.NewLiteral(42)

	out := Useful(state, goal)
	for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
		assert.True(t, contains(out, transition.NewSet(dest, 42)), "dest %d", dest)
	}
}

func TestCopyAndSwapOnlyFromSpecifiedSources(t *testing.T) {
	state := machine.New()
	state.Registers[2] = value.NewLiteral(7)
	goal := machine.New()

	out := Useful(state, goal)
	assert.True(t, contains(out, transition.NewCopy(0, 2)))
	assert.False(t, contains(out, transition.NewCopy(2, 5)))
}

func TestSwapAvoidsMirrorDuplicate(t *testing.T) {
	state := machine.New()
	state.Registers[1] = value.NewLiteral(1)
	state.Registers[3] = value.NewLiteral(2)
	goal := machine.New()

	out := Useful(state, goal)
	assert.True(t, contains(out, transition.NewSwap(3, 1)))
	assert.False(t, contains(out, transition.NewSwap(1, 3)))
}

func TestReadWriteGeneratedForReferenceHoldingRegister(t *testing.T) {
	state := machine.New()
	state.Registers[0] = value.NewReference(0, 0)
	state.Registers[1] = value.NewLiteral(5)
	state.Allocations = []machine.Allocation{{value.NewLiteral(9)}}
	goal := machine.New()

	out := Useful(state, goal)
	assert.True(t, contains(out, transition.NewRead(2, 0, 0)))
	assert.True(t, contains(out, transition.NewWrite(0, 0, 1)))
}

func TestAllocGeneratedForEveryGoalSize(t *testing.T) {
	state := machine.New()
	goal := machine.New()
	goal.Allocations = []machine.Allocation{make(machine.Allocation, 3)}

	out := Useful(state, goal)
	for dest := machine.Register(0); dest < machine.NumRegisters; dest++ {
		assert.True(t, contains(out, transition.NewAlloc(dest, 3)), "dest %d", dest)
	}
}

func TestDropGeneratedForEveryReferenceHoldingRegister(t *testing.T) {
	state := machine.New()
	state.Registers[5] = value.NewReference(0, 0)
	state.Allocations = []machine.Allocation{{value.NewLiteral(1)}}
	goal := machine.New()

	out := Useful(state, goal)
	assert.True(t, contains(out, transition.NewDrop(5)))
	assert.False(t, contains(out, transition.NewDrop(0)))
}
