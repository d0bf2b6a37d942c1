package vm

// word is a 32-bit instruction fetched big-endian from the image. Field
// accessors below extract bit ranges using PowerPC's MSB=0 bit numbering,
// independent of host endianness: bit 0 is the opcode's top bit.
type word uint32

// bits returns the unsigned value of the inclusive bit range [hi, lo] using
// MSB=0 numbering (hi and lo are PowerPC bit positions, hi <= lo).
func (w word) bits(hi, lo int) uint32 {
	width := lo - hi + 1
	shift := 31 - lo
	mask := uint32(1)<<width - 1
	return (uint32(w) >> shift) & mask
}

// bit returns a single bit at PowerPC position pos.
func (w word) bit(pos int) uint32 {
	return w.bits(pos, pos)
}

// opcode returns the primary 6-bit opcode (bits 0-5).
func (w word) opcode() uint32 { return w.bits(0, 5) }

// --- D / D-cmp form (opcode(6) RT/RS(5) RA(5) D/SI(16)) ---

func (w word) rt() int     { return int(w.bits(6, 10)) }
func (w word) ra() int     { return int(w.bits(11, 15)) }
func (w word) d16() uint32 { return w.bits(16, 31) }

// --- D-cmp form (opcode(6) BF(3) 0(1) L(1) RA(5) SI/UI(16)) ---

func (w word) bf() int  { return int(w.bits(6, 8)) }
func (w word) l() uint32 { return w.bit(10) }

// --- I form (opcode(6) LI(24) AA(1) LK(1)) ---

func (w word) li() uint32 { return w.bits(6, 29) }
func (w word) aa() uint32 { return w.bit(30) }
func (w word) lk() uint32 { return w.bit(31) }

// --- B form (opcode(6) BO(5) BI(5) BD(14) AA(1) LK(1)) ---

func (w word) bo() uint32 { return w.bits(6, 10) }
func (w word) bi() uint32 { return w.bits(11, 15) }
func (w word) bd() uint32 { return w.bits(16, 29) }

// --- X-cmp form (opcode(6) BF(3) 0(1) L(1) RA(5) RB(5) XO(10) 0(1)) ---

func (w word) rb() int   { return int(w.bits(16, 20)) }
func (w word) xo10() uint32 { return w.bits(21, 30) }

// --- X / XO form (opcode(6) RT/RS(5) RA(5) RB(5) ...) ---

func (w word) rc() uint32 { return w.bit(31) }

// XO-form: opcode(6) RT(5) RA(5) RB(5) OE(1) XO(9) Rc(1)
func (w word) oe() uint32   { return w.bit(21) }
func (w word) xo9() uint32  { return w.bits(22, 30) }

// X-form mfspr/mtspr: opcode(6) RT(5) spr(10) XO(10) Rc(1)
func (w word) sprRaw() uint32 { return w.bits(11, 20) }

// SC form: opcode(6) unused(20) LEV(4) 2(2). The trailing 2-bit field is
// the instruction's fixed constant bits and carries no operand.
func (w word) lev() uint32 { return w.bits(26, 29) }

// sprNumber un-swaps the halves of the 10-bit SPR field.
func sprNumber(raw uint32) int {
	return int(((raw >> 5) & 0x1F) | (raw & 0x1F))
}

// signExtend16 sign-extends a 16-bit field to int32.
func signExtend16(v uint32) int32 {
	v &= 0xFFFF
	if v&0x8000 != 0 {
		return int32(v) - 0x10000
	}
	return int32(v)
}

// signExtend24 sign-extends a 24-bit field to int32.
func signExtend24(v uint32) int32 {
	v &= 0xFFFFFF
	if v&0x800000 != 0 {
		return int32(v) - 0x1000000
	}
	return int32(v)
}

// signExtend14 sign-extends a 14-bit field to int32.
func signExtend14(v uint32) int32 {
	v &= 0x3FFF
	if v&0x2000 != 0 {
		return int32(v) - 0x4000
	}
	return int32(v)
}

// zeroExtend16 widens a 16-bit field to uint32 without sign extension.
func zeroExtend16(v uint32) uint32 {
	return v & 0xFFFF
}
