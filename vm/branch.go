package vm

// execB implements the unconditional branch family: b/ba/bl/bla (opcode 18,
// I-form). The handler subtracts one from the computed LI offset because
// the run loop performs its own post-dispatch stepAdvance increment on top
// of whatever this handler computes; the net effect after that increment
// is a branch to the correct word.
func execB(v *VM, w word) (stepSignal, error) {
	li := w.li()
	if w.lk() == 1 {
		v.Regs.LR = v.Regs.IAR + 1
	}

	offset := int64(li) - 1
	if w.aa() == 0 {
		v.Regs.IAR = uint64(int64(v.Regs.IAR) + int64(signExtend24(uint32(offset))))
	} else {
		v.Regs.IAR = uint64(signExtend24(uint32(offset)))
	}
	return stepAdvance, nil
}

// execBC implements the conditional branch family: bc and its common
// mnemonics (bdz, bdnz, blt, bgt, beq, bge, ble, bne) at opcode 16, B-form.
// The offset arithmetic applies the architecturally correct rule directly
// in word-index terms: BD is already a word-scaled displacement, so the
// word offset from IAR is the 14-bit field sign-extended, rather than the
// byte-scaled (BD<<2)-then-mask-by-0x8000 computation a byte-addressed core
// would use. Like execB, the taken-branch path carries a -1 compensation
// since this handler always returns stepAdvance, letting the run loop's
// own increment land on the correct word.
func execBC(v *VM, w word) (stepSignal, error) {
	bo := w.bo()
	bi := w.bi()

	crField := int(bi >> 2)
	crBit := CRBit(bi & 3)

	offsetWords := int64(signExtend14(w.bd())) - 1

	decrementedCTR := false
	if bo&0b00100 == 0 {
		v.Regs.CTR--
		decrementedCTR = true
	}

	branch := true
	if decrementedCTR {
		branch = (v.Regs.CTR == 0) == (bo&0b00010 != 0)
	}
	if bo&0b10000 == 0 {
		if bo&0b01000 != 0 {
			branch = branch && v.Regs.CR[crField][crBit]
		} else {
			branch = branch && !v.Regs.CR[crField][crBit]
		}
	}

	if branch {
		if w.lk() == 1 {
			v.Regs.LR = v.Regs.IAR + 1
		}
		if w.aa() != 0 {
			v.Regs.IAR = uint64(offsetWords)
		} else {
			v.Regs.IAR = uint64(int64(v.Regs.IAR) + offsetWords)
		}
	}

	return stepAdvance, nil
}

// execBCLR implements bclr (blr), opcode 19 extended opcode 16, XL-form.
// When LR is zero, the run loop halts — the convention used to detect
// return from the entry frame. Otherwise IAR is set to LR and the loop
// re-enters without the standard post-dispatch increment.
func execBCLR(v *VM, w word) (stepSignal, error) {
	bo := w.bo()
	if bo&0b10100 == 0 {
		return stepAdvance, nil
	}

	if v.Regs.LR == 0 {
		return stepHalt, nil
	}

	v.Regs.IAR = v.Regs.LR
	return stepContinue, nil
}
