package vm

import "fmt"

// State is the run loop's coarse-grained execution state.
type State int

const (
	StateHalted State = iota
	StateRunning
	StateError
)

// DefaultMaxCycles bounds runaway execution when no caller-supplied limit
// is configured.
const DefaultMaxCycles = 1_000_000

// stepSignal is what a handler returns to tell Step how to advance IAR.
type stepSignal int

const (
	stepAdvance  stepSignal = iota // IAR += 1 after the handler returns
	stepContinue                   // the handler already set IAR; re-enter without incrementing
	stepHalt                       // bclr with LR=0: terminate normally
)

// VM is the complete interpreter: register file, memory, and run state.
type VM struct {
	Regs   *Registers
	Memory *Memory

	State      State
	Cycles     uint64
	MaxCycles  uint64
	LastError  error

	EntryIAR uint64

	diagSink *diagnosticSink
}

// Diagnostics returns the soft-failure/informational notes recorded so far:
// unrecognized SPR, syscall, out-of-region memory access.
func (v *VM) Diagnostics() []Diagnostic {
	return v.diagSink.entries
}

// NewVM constructs a VM over the given image, wiring base_address and
// pe_data_offset as supplied by the loader.
func NewVM(image []byte, baseAddress, peDataOffset uint32) *VM {
	m := NewMemory(image, baseAddress, peDataOffset)
	v := &VM{
		Regs:      NewRegisters(),
		Memory:    m,
		State:     StateHalted,
		MaxCycles: DefaultMaxCycles,
	}
	sink := &diagnosticSink{
		cycle:   func() uint64 { return v.Cycles },
		address: func() uint64 { return v.Regs.PC() },
	}
	m.diagnostics = sink
	v.diagSink = sink
	return v
}

// diagSink is unexported; VM.diag and Memory.diag both append through it so
// Diagnostics reflects both sources in chronological order.
func (v *VM) diag(format string, args ...any) {
	v.diagSink.add(fmt.Sprintf(format, args...))
}

// Bootstrap sets the initial stack pointer (GPR[1]), places the entry point
// in IAR, and sets LR to 0 so that a bclr at the outermost frame halts the
// run loop, the convention this core uses to detect return from the entry
// frame.
func (v *VM) Bootstrap(entryIAR uint64) {
	v.EntryIAR = entryIAR
	v.Regs.IAR = entryIAR
	v.Regs.LR = 0
	v.Regs.SetGPR(1, uint64(len(v.Memory.Stack)/2))
	v.State = StateHalted
}

// Step executes exactly one instruction (or, for a bclr with a zero link
// register, terminates the VM). It returns an error when the VM is already
// in the error state, when the cycle limit is reached, when the instruction
// fetch fails, or for an unrecognized primary or secondary opcode.
func (v *VM) Step() error {
	if v.State == StateError {
		return fmt.Errorf("vm is in error state: %w", v.LastError)
	}

	if v.MaxCycles > 0 && v.Cycles >= v.MaxCycles {
		v.State = StateError
		v.LastError = fmt.Errorf("cycle limit exceeded (%d cycles)", v.MaxCycles)
		return v.LastError
	}

	raw, err := v.Memory.FetchWord(v.Regs.IAR)
	if err != nil {
		v.State = StateError
		v.LastError = fmt.Errorf("fetch failed at IAR=0x%X: %w", v.Regs.IAR, err)
		return v.LastError
	}

	signal, err := v.dispatch(word(raw))
	if err != nil {
		v.State = StateError
		v.LastError = fmt.Errorf("decode failed at IAR=0x%X opcode=0x%08X: %w", v.Regs.IAR, raw, err)
		return v.LastError
	}

	v.Cycles++

	switch signal {
	case stepAdvance:
		v.Regs.IAR++
	case stepContinue:
		// handler already updated IAR
	case stepHalt:
		v.State = StateHalted
	}

	return nil
}

// Run executes instructions until halt or a fatal error.
func (v *VM) Run() error {
	v.State = StateRunning
	for v.State == StateRunning {
		if err := v.Step(); err != nil {
			return err
		}
		if v.State == StateHalted {
			return nil
		}
	}
	return nil
}

// DumpState renders a one-line summary of register state for logging.
func (v *VM) DumpState() string {
	return fmt.Sprintf(
		"IAR=0x%X LR=0x%X CTR=0x%X XER=0x%08X CR0=[%s] Cycles=%d State=%v",
		v.Regs.IAR, v.Regs.LR, v.Regs.CTR, v.Regs.XER.Value, crFieldString(v.Regs.CR[0]), v.Cycles, v.State,
	)
}

func crFieldString(f CRField) string {
	b := func(set bool, ch byte) byte {
		if set {
			return ch
		}
		return '-'
	}
	return string([]byte{
		b(f[CRBitLT], 'L'),
		b(f[CRBitGT], 'G'),
		b(f[CRBitEQ], 'E'),
		b(f[CRBitSO], 'S'),
	})
}
