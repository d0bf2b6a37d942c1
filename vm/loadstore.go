package vm

// execLWZ implements lwz (opcode 32, D-form): ea = base + offset, widened
// to 64 bits without sign extension.
func execLWZ(v *VM, w word) (stepSignal, error) {
	base := baseFor(v, w.ra())
	offset := signExtend16(w.d16())
	value := v.Memory.ReadWidth(w.ra(), base, offset, 4)
	v.Regs.SetGPR(w.rt(), value)
	return stepAdvance, nil
}

// execSTW implements stw (opcode 36, D-form): store the low 32 bits of
// GPR[RS] at ea, no update.
func execSTW(v *VM, w word) (stepSignal, error) {
	base := baseFor(v, w.ra())
	offset := signExtend16(w.d16())
	v.Memory.WriteWidth(w.ra(), base, offset, 4, v.Regs.GetGPR(w.rt()))
	return stepAdvance, nil
}

// execSTB implements stb (opcode 38, D-form): store the low 8 bits of
// GPR[RS] at ea, no update.
func execSTB(v *VM, w word) (stepSignal, error) {
	base := baseFor(v, w.ra())
	offset := signExtend16(w.d16())
	v.Memory.WriteWidth(w.ra(), base, offset, 1, v.Regs.GetGPR(w.rt()))
	return stepAdvance, nil
}

// execSTWU implements stwu (opcode 37, D-form), store-with-update:
//
// RA=1 (stack): the current GPR[1] is saved to the new top of stack (the
// location GPR[1] will point to after applying offset), then offset is
// added to GPR[1]. If the result would go negative, the stack buffer is
// grown at its low end by the deficit and GPR[1] is clamped to 0.
//
// RA!=1: the store happens at ea, and ea is written back to GPR[RA].
func execSTWU(v *VM, w word) (stepSignal, error) {
	ra := w.ra()
	offset := int64(signExtend16(w.d16()))

	if ra == 1 {
		oldSP := int64(v.Regs.GetGPR(1))
		newSP := oldSP + offset

		if newSP < 0 {
			v.Memory.GrowStackForDeficit(int(-newSP))
			newSP = 0
		}

		v.Memory.WriteWidth(1, uint64(newSP), 0, 8, uint64(oldSP))
		v.Regs.SetGPR(1, uint64(newSP))
		return stepAdvance, nil
	}

	base := v.Regs.GetGPR(ra)
	ea := uint64(int64(base) + offset)
	v.Memory.WriteWidth(ra, base, int32(offset), 4, v.Regs.GetGPR(w.rt()))
	v.Regs.SetGPR(ra, ea)
	return stepAdvance, nil
}

// baseFor returns GPR[ra], or 0 when ra=0 per the D-form convention that RA=0
// means "no base register" for forms that permit it.
func baseFor(v *VM, ra int) uint64 {
	if ra == 0 {
		return 0
	}
	return v.Regs.GetGPR(ra)
}
