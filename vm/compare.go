package vm

// setCRField zeros all four bits of the target field, then sets exactly
// the one that matches, and copies XER.SO into so.
func (v *VM) setCRField(field int, lt, gt, eq bool) {
	f := &v.Regs.CR[field]
	f.Clear()
	f[CRBitLT] = lt
	f[CRBitGT] = gt
	f[CRBitEQ] = eq
	f[CRBitSO] = v.Regs.XER.SO()
}

// compareSigned compares two sign-extended 64-bit values and reports the
// clear-then-set triple.
func compareSigned(a, b int64) (lt, gt, eq bool) {
	return a < b, a > b, a == b
}

func compareUnsigned(a, b uint64) (lt, gt, eq bool) {
	return a < b, a > b, a == b
}

// widenSigned extracts a or the 32-bit low half, sign-extended, per the L
// bit of the compare forms: L=0 is 32-bit, L=1 is 64-bit.
func widenSigned(v uint64, l uint32) int64 {
	if l == 0 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

func widenUnsigned(v uint64, l uint32) uint64 {
	if l == 0 {
		return uint64(uint32(v))
	}
	return v
}

// execCMPI implements cmpi/cmpwi/cmpdi (opcode 11, D-cmp form): signed
// interpretation, immediate sign-extended from 16 bits.
func execCMPI(v *VM, w word) (stepSignal, error) {
	a := widenSigned(v.Regs.GetGPR(w.ra()), w.l())
	b := int64(signExtend16(w.d16()))
	lt, gt, eq := compareSigned(a, b)
	v.setCRField(w.bf(), lt, gt, eq)
	return stepAdvance, nil
}

// execCMPLI implements cmpli/cmplwi/cmpldi (opcode 10, D-cmp form): unsigned
// interpretation, immediate zero-extended.
func execCMPLI(v *VM, w word) (stepSignal, error) {
	a := widenUnsigned(v.Regs.GetGPR(w.ra()), w.l())
	b := uint64(zeroExtend16(w.d16()))
	lt, gt, eq := compareUnsigned(a, b)
	v.setCRField(w.bf(), lt, gt, eq)
	return stepAdvance, nil
}

// execCMP implements cmp/cmpw/cmpd (opcode 31, XO=0, X-cmp form).
func execCMP(v *VM, w word) (stepSignal, error) {
	a := widenSigned(v.Regs.GetGPR(w.ra()), w.l())
	b := widenSigned(v.Regs.GetGPR(w.rb()), w.l())
	lt, gt, eq := compareSigned(a, b)
	v.setCRField(w.bf(), lt, gt, eq)
	return stepAdvance, nil
}

// execCMPL implements cmpl/cmplw/cmpld (opcode 31, XO=32, X-cmp form).
func execCMPL(v *VM, w word) (stepSignal, error) {
	a := widenUnsigned(v.Regs.GetGPR(w.ra()), w.l())
	b := widenUnsigned(v.Regs.GetGPR(w.rb()), w.l())
	lt, gt, eq := compareUnsigned(a, b)
	v.setCRField(w.bf(), lt, gt, eq)
	return stepAdvance, nil
}
