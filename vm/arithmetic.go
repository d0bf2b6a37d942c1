package vm

// execADDI implements addi/li (opcode 14, D-form): GPR[RT] ←
// (RA=0 ? 0 : GPR[RA]) + SignExt(SI); mnemonic is li when RA=0.
func execADDI(v *VM, w word) (stepSignal, error) {
	var base uint64
	if w.ra() != 0 {
		base = v.Regs.GetGPR(w.ra())
	}
	result := base + uint64(int64(signExtend16(w.d16())))
	v.Regs.SetGPR(w.rt(), result)
	return stepAdvance, nil
}

// execADDIS implements addis/lis (opcode 15, D-form): GPR[RT] ←
// (RA=0 ? 0 : GPR[RA]) + (SignExt(SI) << 16), truncated to 32 bits in the
// low half of GPR[RT].
func execADDIS(v *VM, w word) (stepSignal, error) {
	var base uint64
	if w.ra() != 0 {
		base = v.Regs.GetGPR(w.ra())
	}
	shifted := int64(signExtend16(w.d16())) << 16
	result := uint32(base) + uint32(shifted)
	v.Regs.SetGPR(w.rt(), uint64(result))
	return stepAdvance, nil
}

// execADD implements add[o][.] (opcode 31, XO=266, XO-form): the sum
// is unsigned mod 2^64. OE=1 updates XER.OV from a 32-bit signed-overflow
// sign-bit test, latching XER.SO sticky on overflow. Rc=1 updates CR0.
func execADD(v *VM, w word) (stepSignal, error) {
	ra := v.Regs.GetGPR(w.ra())
	rb := v.Regs.GetGPR(w.rb())
	sum := ra + rb
	v.Regs.SetGPR(w.rt(), sum)

	if w.oe() != 0 {
		ra32, rb32, sum32 := uint32(ra), uint32(rb), uint32(sum)
		overflow := (ra32^(^rb32))&(ra32^sum32)&0x80000000 != 0
		v.Regs.XER.SetOV(overflow)
		if overflow {
			v.Regs.XER.SetSO(true)
		}
	}

	if w.rc() != 0 {
		low := int32(uint32(sum))
		v.setCRField(0, low < 0, low > 0, low == 0)
	}

	return stepAdvance, nil
}
