package vm

// execOR implements or/mr[.] (opcode 31, XO=444, X-form): GPR[RA] ←
// GPR[RS] | GPR[RB]. RS and RT share the same bit-field position in this
// encoding, so rt() doubles as the RS accessor. When RS=RB the mnemonic is
// mr (the display distinction carries no semantic difference). Rc=1
// updates CR0.
func execOR(v *VM, w word) (stepSignal, error) {
	rs := v.Regs.GetGPR(w.rt())
	rb := v.Regs.GetGPR(w.rb())
	result := rs | rb
	v.Regs.SetGPR(w.ra(), result)

	if w.rc() != 0 {
		low := int32(uint32(result))
		v.setCRField(0, low < 0, low > 0, low == 0)
	}

	return stepAdvance, nil
}
