package vm

import "testing"

func TestFetchWordBigEndian(t *testing.T) {
	m := NewMemory([]byte{0x12, 0x34, 0x56, 0x78}, 0x1000, 0)
	got, err := m.FetchWord(0)
	if err != nil {
		t.Fatalf("FetchWord: %v", err)
	}
	if got != 0x12345678 {
		t.Errorf("FetchWord(0) = 0x%X, want 0x12345678", got)
	}
}

func TestFetchWordOutOfBounds(t *testing.T) {
	m := NewMemory([]byte{0, 0, 0, 0}, 0x1000, 0)
	if _, err := m.FetchWord(1); err == nil {
		t.Fatalf("FetchWord(1): expected out-of-bounds error")
	}
}

func TestStackRoutingRA1(t *testing.T) {
	m := NewMemory(make([]byte, 16), 0x1000, 0)
	m.WriteWidth(1, 100, -4, 4, 0xAABBCCDD)
	got := m.ReadWidth(1, 100, -4, 4)
	if got != 0xAABBCCDD {
		t.Errorf("stack round trip = 0x%X, want 0xAABBCCDD", got)
	}
}

func TestImageRoutingTakesPrecedenceOverDirectStackIndex(t *testing.T) {
	// xexBase = 0x1000 - 0 = 0x1000. An ea inside [xexBase, xexBase+len]
	// must resolve to the image even though it also numerically fits as a
	// direct stack index.
	img := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	m := NewMemory(img, 0x1000, 0)
	got := m.ReadWidth(0, 0x1000, 0, 4)
	if got != 0xEFBEADDE { // little-endian widen of big-endian bytes
		t.Errorf("ReadWidth = 0x%X, want 0xEFBEADDE", got)
	}
}

func TestOutOfRegionReadYieldsZeroAndDiagnostic(t *testing.T) {
	sink := &diagnosticSink{}
	m := NewMemory(make([]byte, 4), 0x1000, 0)
	m.diagnostics = sink
	got := m.ReadWidth(0, 0xFFFFFFF0, 0, 4)
	if got != 0 {
		t.Errorf("ReadWidth = 0x%X, want 0", got)
	}
	if len(sink.entries) != 1 {
		t.Errorf("diagnostics len = %d, want 1", len(sink.entries))
	}
}

func TestGrowStackForDeficitShiftsExistingOffsets(t *testing.T) {
	m := NewMemory(make([]byte, 4), 0x1000, 0)
	m.Stack[0] = 0xAB
	m.GrowStackForDeficit(8)
	if len(m.Stack) != DefaultStackCapacity+8 {
		t.Fatalf("len(Stack) = %d, want %d", len(m.Stack), DefaultStackCapacity+8)
	}
	if m.Stack[8] != 0xAB {
		t.Errorf("Stack[8] = 0x%X, want 0xAB (shifted by deficit)", m.Stack[8])
	}
}

func TestRewriteBranchComputesLI(t *testing.T) {
	m := NewMemory(make([]byte, 16), 0x1000, 0)
	if err := m.RewriteBranch(1, 4); err != nil {
		t.Fatalf("RewriteBranch: %v", err)
	}
	raw, _ := m.FetchWord(1)
	w := word(raw)
	if w.opcode() != 18 {
		t.Errorf("opcode = %d, want 18", w.opcode())
	}
	if w.li() != 3 {
		t.Errorf("li() = %d, want 3 (dst 4 - src 1)", w.li())
	}
}
