// Package emit converts a Transition into an x86-64 byte sequence, per
// spec.md §4.4. It accepts any "growing byte sink" collaborator: a real
// assembler that records bytes, or an offset-only sink that counts them
// (used by internal/cost to derive size(t) from the ground truth instead
// of a hand-maintained table).
package emit

// Sink is the minimal surface the emitter needs from its output
// collaborator: push individual bytes or fixed-width little-endian
// integers, align the write cursor, and report the current offset.
type Sink interface {
	PushByte(b byte)
	PushI8(v int8)
	PushI32(v int32)
	PushI64(v int64)
	PushU32(v uint32)
	PushU64(v uint64)
	Align(alignment int, with byte)
	Offset() int
}

// ByteSink is the real assembler: it collects every emitted byte into a
// buffer.
type ByteSink struct {
	buf []byte
}

// NewByteSink returns an empty ByteSink.
func NewByteSink() *ByteSink { return &ByteSink{} }

func (s *ByteSink) Bytes() []byte { return s.buf }

func (s *ByteSink) PushByte(b byte) { s.buf = append(s.buf, b) }

func (s *ByteSink) PushI8(v int8) { s.buf = append(s.buf, byte(v)) }

func (s *ByteSink) PushI32(v int32) { s.pushLE(uint32(v), 4) }

func (s *ByteSink) PushI64(v int64) { s.pushLE(uint64(v), 8) }

func (s *ByteSink) PushU32(v uint32) { s.pushLE(uint64(v), 4) }

func (s *ByteSink) PushU64(v uint64) { s.pushLE(v, 8) }

func (s *ByteSink) pushLE(v uint64, n int) {
	for i := 0; i < n; i++ {
		s.buf = append(s.buf, byte(v>>(8*uint(i))))
	}
}

func (s *ByteSink) Align(alignment int, with byte) {
	for len(s.buf)%alignment != 0 {
		s.buf = append(s.buf, with)
	}
}

func (s *ByteSink) Offset() int { return len(s.buf) }

// OffsetSink counts bytes without keeping them. This is the ground truth
// internal/cost uses for size(t): no size table is hand-maintained
// anywhere in this repository, it is always obtained by running the
// emitter against this sink (spec.md §4.3).
type OffsetSink struct {
	offset int
}

func NewOffsetSink() *OffsetSink { return &OffsetSink{} }

func (s *OffsetSink) PushByte(byte)        { s.offset++ }
func (s *OffsetSink) PushI8(int8)          { s.offset++ }
func (s *OffsetSink) PushI32(int32)        { s.offset += 4 }
func (s *OffsetSink) PushI64(int64)        { s.offset += 8 }
func (s *OffsetSink) PushU32(uint32)       { s.offset += 4 }
func (s *OffsetSink) PushU64(uint64)       { s.offset += 8 }
func (s *OffsetSink) Offset() int          { return s.offset }
func (s *OffsetSink) Align(a int, _ byte) {
	if r := s.offset % a; r != 0 {
		s.offset += a - r
	}
}
