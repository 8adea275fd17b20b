package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailforge/internal/value"
)

func TestIsValidOrphanAllocation(t *testing.T) {
	s := New()
	s.Allocations = []Allocation{{value.NewLiteral(1)}}
	assert.False(t, s.IsValid(), "allocation referenced by nobody is an orphan")

	s.Registers[0] = value.NewReference(0, 0)
	assert.True(t, s.IsValid())
}

func TestIsValidBadReferenceIndex(t *testing.T) {
	s := New()
	s.Registers[0] = value.NewReference(0, 0)
	assert.False(t, s.IsValid(), "reference to nonexistent allocation")
}

func TestIsValidFlags(t *testing.T) {
	s := New()
	s.Flags[Zero] = value.NewLiteral(1)
	assert.True(t, s.IsValid())
	s.Flags[Zero] = value.NewLiteral(2)
	assert.False(t, s.IsValid(), "flags may only hold boolean literals")
	s.Flags[Zero] = value.NewSymbol(9)
	assert.True(t, s.IsValid())
}

func TestSymbolsLiteralsAllocSizes(t *testing.T) {
	s := New()
	s.Registers[0] = value.NewSymbol(1)
	s.Registers[1] = value.NewLiteral(42)
	s.Allocations = []Allocation{{value.NewSymbol(2)}, {value.NewLiteral(7), value.NewSymbol(2)}}
	s.Registers[2] = value.NewReference(0, 0)
	s.Registers[3] = value.NewReference(1, 0)

	syms := s.Symbols()
	assert.Len(t, syms, 2)
	_, ok := syms[1]
	assert.True(t, ok)
	_, ok = syms[2]
	assert.True(t, ok)

	lits := s.Literals()
	assert.Len(t, lits, 2)

	sizes := s.AllocSizes()
	assert.Equal(t, 1, sizes[1])
	assert.Equal(t, 1, sizes[2])
}

func TestReachable(t *testing.T) {
	s := New()
	s.Registers[0] = value.NewSymbol(1)
	goal := New()
	goal.Registers[0] = value.NewSymbol(1)
	assert.True(t, s.Reachable(goal))

	goal.Registers[1] = value.NewSymbol(7)
	assert.False(t, s.Reachable(goal), "symbol 7 is not in state")
}

func TestSatisfiesReflexive(t *testing.T) {
	s := New()
	s.Registers[0] = value.NewSymbol(1)
	s.Allocations = []Allocation{{value.NewSymbol(2)}}
	s.Registers[1] = value.NewReference(0, 0)
	require.True(t, s.IsValid())
	assert.True(t, s.Satisfies(s))
}

func TestSatisfiesUnspecifiedMatchesAnything(t *testing.T) {
	s := New()
	s.Registers[0] = value.NewLiteral(5)
	goal := New()
	assert.True(t, s.Satisfies(goal))
}

func TestSatisfiesReferenceStructural(t *testing.T) {
	s := New()
	s.Allocations = []Allocation{{value.NewLiteral(1), value.NewSymbol(9)}}
	s.Registers[0] = value.NewReference(0, 0)

	goal := New()
	goal.Allocations = []Allocation{{value.NewLiteral(1), value.NewSymbol(9)}}
	goal.Registers[0] = value.NewReference(0, 0)

	assert.True(t, s.Satisfies(goal))

	goal.Allocations[0][1] = value.NewSymbol(10)
	assert.False(t, s.Satisfies(goal))
}

func TestSatisfiesAllocationLengthMismatch(t *testing.T) {
	s := New()
	s.Allocations = []Allocation{{value.NewLiteral(1)}}
	s.Registers[0] = value.NewReference(0, 0)

	goal := New()
	goal.Allocations = []Allocation{{value.NewLiteral(1), value.NewLiteral(2)}}
	goal.Registers[0] = value.NewReference(0, 0)

	assert.False(t, s.Satisfies(goal))
}

func TestSatisfiesCyclicAllocations(t *testing.T) {
	// Two allocations referencing each other - must not infinite loop.
	s := New()
	s.Allocations = []Allocation{
		{value.NewReference(1, 0)},
		{value.NewReference(0, 0)},
	}
	s.Registers[0] = value.NewReference(0, 0)
	require.True(t, s.IsValid())

	goal := New()
	goal.Allocations = []Allocation{
		{value.NewReference(1, 0)},
		{value.NewReference(0, 0)},
	}
	goal.Registers[0] = value.NewReference(0, 0)

	assert.True(t, s.Satisfies(goal))
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.Allocations = []Allocation{{value.NewLiteral(1)}}
	s.Registers[0] = value.NewReference(0, 0)

	clone := s.Clone()
	clone.Allocations[0][0] = value.NewLiteral(2)

	orig, _ := s.GetReference(0, 0)
	n, _ := orig.Literal()
	assert.Equal(t, uint64(1), n, "mutating the clone must not affect the original")
}

func TestKeyIgnoresAllocationPermutation(t *testing.T) {
	a := New()
	a.Allocations = []Allocation{{value.NewLiteral(1)}, {value.NewLiteral(2)}}
	a.Registers[0] = value.NewReference(0, 0)
	a.Registers[1] = value.NewReference(1, 0)

	b := New()
	b.Allocations = []Allocation{{value.NewLiteral(2)}, {value.NewLiteral(1)}}
	b.Registers[0] = value.NewReference(1, 0)
	b.Registers[1] = value.NewReference(0, 0)

	require.True(t, a.IsValid())
	require.True(t, b.IsValid())
	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equal(b))
}

func TestKeyDistinguishesDifferentContent(t *testing.T) {
	a := New()
	a.Registers[0] = value.NewSymbol(1)
	b := New()
	b.Registers[0] = value.NewSymbol(2)
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestGetReferenceOutOfRange(t *testing.T) {
	s := New()
	s.Allocations = []Allocation{{value.NewLiteral(1)}}
	s.Registers[0] = value.NewReference(0, 0)

	_, ok := s.GetReference(0, 5)
	assert.False(t, ok)

	_, ok = s.GetReference(1, 0)
	assert.False(t, ok, "register 1 is not a reference")
}
