package vm

// execSC implements sc (opcode 17, SC-form): LEV=2 is a diagnostic point
// logging the syscall index in GPR[0]; any other LEV is a no-op. The full
// syscall ABI is external to the core.
func execSC(v *VM, w word) (stepSignal, error) {
	if w.lev() == 2 {
		v.diag("sc: syscall index %d", v.Regs.GetGPR(0))
	}
	return stepAdvance, nil
}
