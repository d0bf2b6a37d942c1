package vm

import "testing"

func dForm(opcode, rt, ra uint32, d int32) word {
	return word(opcode<<26 | rt<<21 | ra<<16 | uint32(d)&0xFFFF)
}

func TestExecSTWThenLWZRoundTrip(t *testing.T) {
	v := newTestVM(0, 0)
	// Use the direct-stack-index path (RA != 1, ea within stack length) so
	// the round trip doesn't depend on image layout.
	v.Regs.SetGPR(4, 0) // RA=4, base ea=0
	v.Regs.SetGPR(3, 0xDEADBEEF)
	stw := dForm(36, 3, 4, 100)
	if _, err := execSTW(v, stw); err != nil {
		t.Fatalf("execSTW: %v", err)
	}
	lwz := dForm(32, 5, 4, 100)
	if _, err := execLWZ(v, lwz); err != nil {
		t.Fatalf("execLWZ: %v", err)
	}
	if got := v.Regs.GetGPR(5); got != 0xDEADBEEF {
		t.Errorf("GPR[5] = 0x%X, want 0xDEADBEEF", got)
	}
}

func TestExecSTBStoresLowByte(t *testing.T) {
	v := newTestVM(0)
	v.Regs.SetGPR(4, 0)
	v.Regs.SetGPR(3, 0x1234)
	stb := dForm(38, 3, 4, 50)
	if _, err := execSTB(v, stb); err != nil {
		t.Fatalf("execSTB: %v", err)
	}
	got := v.Memory.ReadWidth(4, 0, 50, 1)
	if got != 0x34 {
		t.Errorf("stored byte = 0x%X, want 0x34", got)
	}
}

func TestExecLWZOutOfRegionSoftFails(t *testing.T) {
	v := newTestVM(0)
	v.Regs.SetGPR(4, 0xFFFFFFF0) // far outside image and stack
	lwz := dForm(32, 5, 4, 0)
	if _, err := execLWZ(v, lwz); err != nil {
		t.Fatalf("execLWZ: %v", err)
	}
	if got := v.Regs.GetGPR(5); got != 0 {
		t.Errorf("GPR[5] = 0x%X, want 0 (soft failure yields zero)", got)
	}
	if len(v.Diagnostics()) == 0 {
		t.Errorf("expected a diagnostic for the out-of-region read")
	}
}

func TestExecSTWUStackGrowth(t *testing.T) {
	v := newTestVM(0)
	v.Regs.SetGPR(1, 0x100)
	// stwu r1, -0x20(r1)
	w := dForm(37, 1, 1, -0x20)
	if _, err := execSTWU(v, w); err != nil {
		t.Fatalf("execSTWU: %v", err)
	}
	if got := v.Regs.GetGPR(1); got != 0xE0 {
		t.Errorf("GPR[1] = 0x%X, want 0xE0", got)
	}
	saved := v.Memory.ReadWidth(0, 0xE0, 0, 8)
	if saved != 0x100 {
		t.Errorf("saved old SP = 0x%X, want 0x100", saved)
	}
}

func TestExecSTWUGrowsBufferOnDeficit(t *testing.T) {
	v := newTestVM(0)
	originalLen := len(v.Memory.Stack)
	v.Regs.SetGPR(1, 10)
	// stwu r1, -0x20(r1): 10 - 0x20 goes negative, forcing growth.
	w := dForm(37, 1, 1, -0x20)
	if _, err := execSTWU(v, w); err != nil {
		t.Fatalf("execSTWU: %v", err)
	}
	if got := v.Regs.GetGPR(1); got != 0 {
		t.Errorf("GPR[1] = %d, want 0 (clamped)", got)
	}
	if len(v.Memory.Stack) <= originalLen {
		t.Errorf("Stack did not grow: len=%d, original=%d", len(v.Memory.Stack), originalLen)
	}
}

func TestExecSTWUNonStackWritesBackEA(t *testing.T) {
	v := newTestVM(0)
	v.Regs.SetGPR(2, 0)
	v.Regs.SetGPR(3, 0x55)
	// stwu r3, 16(r2), RA=2 (not 1)
	w := dForm(37, 3, 2, 16)
	if _, err := execSTWU(v, w); err != nil {
		t.Fatalf("execSTWU: %v", err)
	}
	if got := v.Regs.GetGPR(2); got != 16 {
		t.Errorf("GPR[2] = %d, want 16 (ea written back)", got)
	}
	got := v.Memory.ReadWidth(2, 0, 16, 4)
	if got != 0x55 {
		t.Errorf("stored word = 0x%X, want 0x55", got)
	}
}
