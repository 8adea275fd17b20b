package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailforge/internal/bump"
	"tailforge/internal/transition"
)

func TestOffsetSinkMatchesByteSinkLength(t *testing.T) {
	bc := bump.Default()
	trs := []transition.Transition{
		transition.NewSet(0, 0),
		transition.NewSet(9, 1<<40),
		transition.NewCopy(1, 2),
		transition.NewSwap(0, 5),
		transition.NewSwap(3, 9),
		transition.NewRead(1, 2, 3),
		transition.NewWrite(2, 20, 1),
		transition.NewAlloc(4, 3),
		transition.NewAlloc(4, 1000),
		transition.NewDrop(4),
	}
	for _, tr := range trs {
		offset := NewOffsetSink()
		Emit(offset, tr, bc)

		real := NewByteSink()
		Emit(real, tr, bc)

		assert.Equal(t, offset.Offset(), len(real.Bytes()), "transition %v", tr)
	}
}

func TestCopySelfEmitsNothing(t *testing.T) {
	bc := bump.Default()
	sink := NewByteSink()
	Emit(sink, transition.NewCopy(4, 4), bc)
	assert.Empty(t, sink.Bytes())
}

func TestSwapSelfEmitsNothing(t *testing.T) {
	bc := bump.Default()
	sink := NewByteSink()
	Emit(sink, transition.NewSwap(4, 4), bc)
	assert.Empty(t, sink.Bytes())
}

func TestSetZeroUsesXor(t *testing.T) {
	bc := bump.Default()
	sink := NewByteSink()
	Emit(sink, transition.NewSet(0, 0), bc)
	require.Len(t, sink.Bytes(), 2)
	assert.Equal(t, byte(0x31), sink.Bytes()[0])
}

func TestDropEmitsNothing(t *testing.T) {
	bc := bump.Default()
	sink := NewByteSink()
	Emit(sink, transition.NewDrop(0), bc)
	assert.Empty(t, sink.Bytes())
}

func TestAllocEmitsReadThenAdd(t *testing.T) {
	bc := bump.Default()
	small := NewByteSink()
	Emit(small, transition.NewAlloc(0, 1), bc)
	assert.Equal(t, 7+8, len(small.Bytes()))

	large := NewByteSink()
	Emit(large, transition.NewAlloc(0, 1000), bc)
	assert.Equal(t, 7+11, len(large.Bytes()))
}
