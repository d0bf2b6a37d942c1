package vm

import "testing"

// sprXForm builds an mfspr/mtspr word: opcode(6) RT(5) spr(10) XO(10) Rc(1).
func sprXForm(opcode, rt uint32, sprNum int, xo uint32) word {
	raw := uint32((sprNum&0x1F)<<5 | (sprNum>>5)&0x1F)
	return word(opcode<<26 | rt<<21 | raw<<11 | xo<<1)
}

func TestMFSPRMTSPRRoundTrip(t *testing.T) {
	for _, spr := range []int{sprXER, sprLR, sprCTR} {
		v := newTestVM(0, 0)
		v.Regs.SetGPR(3, 0x2A)
		mtspr := sprXForm(31, 3, spr, 467)
		if _, err := execMTSPR(v, mtspr); err != nil {
			t.Fatalf("execMTSPR(spr=%d): %v", spr, err)
		}
		mfspr := sprXForm(31, 5, spr, 339)
		if _, err := execMFSPR(v, mfspr); err != nil {
			t.Fatalf("execMFSPR(spr=%d): %v", spr, err)
		}
		if got := v.Regs.GetGPR(5); got != 0x2A {
			t.Errorf("spr %d round trip: GPR[5] = 0x%X, want 0x2A", spr, got)
		}
	}
}

func TestMFSPRUnrecognizedIsSoftNoOp(t *testing.T) {
	v := newTestVM(0)
	v.Regs.SetGPR(5, 0x99)
	mfspr := sprXForm(31, 5, 99, 339)
	if _, err := execMFSPR(v, mfspr); err != nil {
		t.Fatalf("execMFSPR: %v", err)
	}
	if got := v.Regs.GetGPR(5); got != 0x99 {
		t.Errorf("GPR[5] = 0x%X, want unchanged 0x99", got)
	}
	if len(v.Diagnostics()) != 1 {
		t.Errorf("Diagnostics() len = %d, want 1", len(v.Diagnostics()))
	}
}

func TestMTSPRUnrecognizedIsSoftNoOp(t *testing.T) {
	v := newTestVM(0)
	v.Regs.LR = 0x1111
	mtspr := sprXForm(31, 3, 99, 467)
	if _, err := execMTSPR(v, mtspr); err != nil {
		t.Fatalf("execMTSPR: %v", err)
	}
	if v.Regs.LR != 0x1111 {
		t.Errorf("LR = 0x%X, want unchanged", v.Regs.LR)
	}
	if len(v.Diagnostics()) != 1 {
		t.Errorf("Diagnostics() len = %d, want 1", len(v.Diagnostics()))
	}
}
