package emit

import (
	"tailforge/internal/bump"
	"tailforge/internal/machine"
	"tailforge/internal/transition"
)

// Emit renders one Transition as x86-64 machine code into sink, per the
// rules of spec.md §4.4. bc supplies the bump allocator's fixed RAM
// address for Alloc.
//
// Alloc addresses the free-pointer word absolutely: ModRM rm=100 plus a SIB
// byte with no base and no index register, then a 32-bit displacement. The
// displacement is sign-extended, so only a heap head below 2GiB is
// addressed correctly; no RIP-relative or scratch-register form is emitted.
func Emit(sink Sink, t transition.Transition, bc bump.Contract) {
	switch t.Kind {
	case transition.Set:
		emitSet(sink, t.Dest, t.Value)
	case transition.Copy:
		emitCopy(sink, t.Dest, t.Source)
	case transition.Swap:
		emitSwap(sink, t.Dest, t.Source)
	case transition.Read:
		emitRead(sink, t.Dest, t.Source, t.Offset)
	case transition.Write:
		emitWrite(sink, t.Dest, t.Offset, t.Source)
	case transition.Alloc:
		emitAlloc(sink, t.Dest, t.Size, bc)
	case transition.Drop:
		// The bump allocator never reclaims; Drop is purely an
		// abstract-state operation (spec.md §4.4).
	}
}

func rexByte(w, r, x, b bool) byte {
	var v byte = 0x40
	if w {
		v |= 0x08
	}
	if r {
		v |= 0x04
	}
	if x {
		v |= 0x02
	}
	if b {
		v |= 0x01
	}
	return v
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | (rm & 7)
}

func sib(scale, index, base byte) byte {
	return scale<<6 | (index&7)<<3 | (base & 7)
}

// needsSIB reports whether addressing through reg as a base register
// requires a SIB byte: RSP and R12 both encode rm=100 in ModRM, which x86
// reserves to mean "SIB follows" rather than a plain base register.
func needsSIB(reg machine.Register) bool {
	return reg&7 == 4
}

func emitSet(sink Sink, dest machine.Register, val uint64) {
	switch {
	case val == 0:
		// 32-bit XOR zeroes the register and clobbers flags; callers
		// must not rely on flags surviving a Set-zero (spec.md §4.4).
		if dest >= 8 {
			sink.PushByte(rexByte(false, true, false, true))
		}
		sink.PushByte(0x31)
		sink.PushByte(modrm(0b11, byte(dest), byte(dest)))
	case val <= 1<<32-1:
		if dest >= 8 {
			sink.PushByte(rexByte(false, false, false, true))
		}
		sink.PushByte(0xB8 + byte(dest&7))
		sink.PushU32(uint32(val))
	default:
		sink.PushByte(rexByte(true, false, false, dest >= 8))
		sink.PushByte(0xB8 + byte(dest&7))
		sink.PushU64(val)
	}
}

func emitCopy(sink Sink, dest, source machine.Register) {
	if dest == source {
		return
	}
	sink.PushByte(rexByte(true, source >= 8, false, dest >= 8))
	sink.PushByte(0x89)
	sink.PushByte(modrm(0b11, byte(source), byte(dest)))
}

func emitSwap(sink Sink, dest, source machine.Register) {
	if dest == source {
		return
	}
	if dest == 0 || source == 0 {
		other := dest
		if dest == 0 {
			other = source
		}
		sink.PushByte(rexByte(true, false, false, other >= 8))
		sink.PushByte(0x90 + byte(other&7))
		return
	}
	sink.PushByte(rexByte(true, source >= 8, false, dest >= 8))
	sink.PushByte(0x87)
	sink.PushByte(modrm(0b11, byte(source), byte(dest)))
}

func emitRead(sink Sink, dest, source machine.Register, offset int) {
	disp := 8 * offset
	useDisp8 := disp >= -128 && disp <= 127
	sink.PushByte(rexByte(true, dest >= 8, false, source >= 8))
	sink.PushByte(0x8B)
	if useDisp8 {
		sink.PushByte(modrm(0b01, byte(dest), byte(source)))
	} else {
		sink.PushByte(modrm(0b10, byte(dest), byte(source)))
	}
	if needsSIB(source) {
		sink.PushByte(sib(0, 0b100, byte(source)))
	}
	if useDisp8 {
		sink.PushI8(int8(disp))
	} else {
		sink.PushI32(int32(disp))
	}
}

func emitWrite(sink Sink, dest machine.Register, offset int, source machine.Register) {
	disp := 8 * offset
	useDisp8 := disp >= -128 && disp <= 127
	sink.PushByte(rexByte(true, source >= 8, false, dest >= 8))
	sink.PushByte(0x89)
	if useDisp8 {
		sink.PushByte(modrm(0b01, byte(source), byte(dest)))
	} else {
		sink.PushByte(modrm(0b10, byte(source), byte(dest)))
	}
	if needsSIB(dest) {
		sink.PushByte(sib(0, 0b100, byte(dest)))
	}
	if useDisp8 {
		sink.PushI8(int8(disp))
	} else {
		sink.PushI32(int32(disp))
	}
}

// EmitTailJump appends the two-byte `jmp [r0]` spec.md §6 requires every
// declaration's code to end with: "Implementers append the bytes produced
// by emitting each Transition to the code segment, then append a single
// jmp [r0] (two bytes) to perform the tail call." r0 needs no REX prefix,
// no SIB byte, and no displacement, since it is register 0 (rax) with a
// zero offset — ModRM mod=00/reg=100(/4, the FF opcode extension)/rm=000.
func EmitTailJump(sink Sink) {
	sink.PushByte(0xFF)
	sink.PushByte(modrm(0b00, 0b100, 0b000))
}

func emitAlloc(sink Sink, dest machine.Register, size int, bc bump.Contract) {
	// mov Rd(dest), DWORD [heapHead]  (absolute, no base register)
	if dest >= 8 {
		sink.PushByte(rexByte(false, true, false, false))
	}
	sink.PushByte(0x8B)
	sink.PushByte(modrm(0b00, byte(dest), 0b100))
	sink.PushByte(sib(0, 0b100, 0b101))
	sink.PushI32(int32(bc.HeapHead))

	// add DWORD [heapHead], size
	if size <= 127 {
		sink.PushByte(0x83)
		sink.PushByte(modrm(0b00, 0, 0b100))
		sink.PushByte(sib(0, 0b100, 0b101))
		sink.PushI32(int32(bc.HeapHead))
		sink.PushI8(int8(size))
	} else {
		sink.PushByte(0x81)
		sink.PushByte(modrm(0b00, 0, 0b100))
		sink.PushByte(sib(0, 0b100, 0b101))
		sink.PushI32(int32(bc.HeapHead))
		sink.PushI32(int32(uint32(size)))
	}
}
