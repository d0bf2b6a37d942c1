package vm

// Diagnostic is a soft-failure or informational note recorded while
// running: unrecognized SPR, syscall, out-of-region memory access. None of
// these halt the VM; they accumulate here for callers (CLI, debugger, API)
// to surface however they see fit.
type Diagnostic struct {
	Cycle   uint64
	Address uint64 // byte PC at the time of the diagnostic
	Message string
}

// diagnosticSink is embedded by VM and Memory so both can append without
// either owning the other.
type diagnosticSink struct {
	entries []Diagnostic
	cycle   func() uint64
	address func() uint64
}

func (s *diagnosticSink) add(msg string) {
	var cycle, addr uint64
	if s.cycle != nil {
		cycle = s.cycle()
	}
	if s.address != nil {
		addr = s.address()
	}
	s.entries = append(s.entries, Diagnostic{Cycle: cycle, Address: addr, Message: msg})
}
