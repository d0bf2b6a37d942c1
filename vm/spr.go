package vm

const (
	sprXER = 1
	sprLR  = 8
	sprCTR = 9
)

// execMFSPR implements mfspr (opcode 31, XO=339, X-form): unrecognized SPR
// numbers are a soft no-op with a diagnostic.
func execMFSPR(v *VM, w word) (stepSignal, error) {
	spr := sprNumber(w.sprRaw())
	switch spr {
	case sprXER:
		v.Regs.SetGPR(w.rt(), uint64(v.Regs.XER.Value))
	case sprLR:
		v.Regs.SetGPR(w.rt(), v.Regs.LR)
	case sprCTR:
		v.Regs.SetGPR(w.rt(), v.Regs.CTR)
	default:
		v.diag("mfspr: unrecognized spr %d", spr)
	}
	return stepAdvance, nil
}

// execMTSPR implements mtspr (opcode 31, XO=467, X-form).
func execMTSPR(v *VM, w word) (stepSignal, error) {
	spr := sprNumber(w.sprRaw())
	value := v.Regs.GetGPR(w.rt())
	switch spr {
	case sprXER:
		v.Regs.XER.Value = uint32(value)
	case sprLR:
		v.Regs.LR = value
	case sprCTR:
		v.Regs.CTR = value
	default:
		v.diag("mtspr: unrecognized spr %d", spr)
	}
	return stepAdvance, nil
}
