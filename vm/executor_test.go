package vm

import "testing"

// image builds a flat instruction image from big-endian 32-bit words.
func image(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		buf[4*i+0] = byte(w >> 24)
		buf[4*i+1] = byte(w >> 16)
		buf[4*i+2] = byte(w >> 8)
		buf[4*i+3] = byte(w)
	}
	return buf
}

func newTestVM(words ...uint32) *VM {
	v := NewVM(image(words...), 0x1000, 0)
	v.Bootstrap(0)
	return v
}

// Scenario 1: li r3, 0x1234 -- word 0x38601234.
func TestScenarioLI(t *testing.T) {
	v := newTestVM(0x38601234)
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v.Regs.GetGPR(3); got != 0x1234 {
		t.Errorf("GPR[3] = 0x%X, want 0x1234", got)
	}
	if v.Regs.IAR != 1 {
		t.Errorf("IAR = %d, want 1", v.Regs.IAR)
	}
}

// Scenario 2: lis r3, 0x1234; addi r3, r3, 0x5678.
func TestScenarioLISAddi(t *testing.T) {
	v := newTestVM(0x3C601234, 0x38635678)
	if err := v.Step(); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if err := v.Step(); err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if got := v.Regs.GetGPR(3); got != 0x12345678 {
		t.Errorf("GPR[3] = 0x%X, want 0x12345678", got)
	}
}

// Scenario 3: cmpwi cr0, r3, 0x10 with GPR[3]=5.
func TestScenarioCMPWI(t *testing.T) {
	v := newTestVM(0x2C030010)
	v.Regs.SetGPR(3, 5)
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	cr0 := v.Regs.CR[0]
	if !cr0[CRBitLT] || cr0[CRBitGT] || cr0[CRBitEQ] {
		t.Errorf("CR0 = %+v, want lt=1 gt=0 eq=0", cr0)
	}
	if cr0[CRBitSO] != v.Regs.XER.SO() {
		t.Errorf("CR0.so = %v, want XER.SO = %v", cr0[CRBitSO], v.Regs.XER.SO())
	}
}

// Scenario 4: stwu r1, -0x20(r1) with GPR[1]=0x100.
func TestScenarioSTWU(t *testing.T) {
	v := newTestVM(0x9421FFE0)
	v.Regs.SetGPR(1, 0x100)
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := v.Regs.GetGPR(1); got != 0xE0 {
		t.Errorf("GPR[1] = 0x%X, want 0xE0", got)
	}
	saved := v.Memory.ReadWidth(0, 0xE0, 0, 8)
	if saved != 0x100 {
		t.Errorf("saved old SP = 0x%X, want 0x100", saved)
	}
}

// Scenario 5: b +8 from IAR=0, word 0x48000008. Post: IAR=2.
func TestScenarioBranch(t *testing.T) {
	v := newTestVM(0x48000008)
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.Regs.IAR != 2 {
		t.Errorf("IAR = %d, want 2", v.Regs.IAR)
	}
}

// Scenario 6: blr as the first instruction with LR=0 halts immediately.
func TestScenarioBLRHalt(t *testing.T) {
	v := newTestVM(0x4E800020) // blr
	if err := v.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v.State != StateHalted {
		t.Errorf("State = %v, want StateHalted", v.State)
	}
}

func TestBLSetsLRThenBLRJumps(t *testing.T) {
	// bl +8 (to word index 2), then at word 2: blr.
	v := newTestVM(0x48000009, 0, 0x4E800020) // bl +8 ; nop-ish ; blr
	if err := v.Step(); err != nil {
		t.Fatalf("Step 1 (bl): %v", err)
	}
	if v.Regs.LR != 1 {
		t.Errorf("LR = %d, want 1", v.Regs.LR)
	}
	if v.Regs.IAR != 2 {
		t.Errorf("IAR after bl = %d, want 2", v.Regs.IAR)
	}
	if err := v.Step(); err != nil {
		t.Fatalf("Step 2 (blr): %v", err)
	}
	if v.Regs.IAR != 1 {
		t.Errorf("IAR after blr = %d, want 1 (LR)", v.Regs.IAR)
	}
}

func TestUnknownOpcodeHalts(t *testing.T) {
	v := newTestVM(0x00000000) // opcode 0, unmapped
	if err := v.Step(); err == nil {
		t.Fatalf("Step: expected error for unknown opcode")
	}
	if v.State != StateError {
		t.Errorf("State = %v, want StateError", v.State)
	}
}

func TestMaxCyclesStopsRunaway(t *testing.T) {
	v := newTestVM(0x48000000) // b +0, infinite self-loop
	v.MaxCycles = 10
	err := v.Run()
	if err == nil {
		t.Fatalf("Run: expected cycle-limit error")
	}
	if v.Cycles != 10 {
		t.Errorf("Cycles = %d, want 10", v.Cycles)
	}
}
