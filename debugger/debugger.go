// Package debugger provides an interactive front end over a vm.VM: step,
// continue, breakpoints keyed by word-indexed IAR, watchpoints on GPRs and
// stack bytes, and a command-line dispatcher.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crtdll/py-ppc-xex/config"
	"github.com/crtdll/py-ppc-xex/vm"
)

// Debugger holds interactive execution-control state layered on top of a
// vm.VM. There is no symbol table or source map: addresses are always
// shown and entered as word indices.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory

	Running  bool
	StepMode StepMode

	LastCommand string

	Output strings.Builder
}

// StepMode represents the debugger's stepping mode.
type StepMode int

const (
	StepNone   StepMode = iota
	StepSingle          // step one instruction, then pause
)

// NewDebugger creates a debugger instance over machine, using cfg to size
// the command history.
func NewDebugger(machine *vm.VM, cfg *config.Config) *Debugger {
	historySize := 1000
	if cfg != nil {
		historySize = cfg.Debugger.HistorySize
	}
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistoryWithCapacity(historySize),
		StepMode:    StepNone,
	}
}

// ParseIAR parses a word-index argument, accepting either a "0x"-prefixed
// hex literal or a plain decimal number.
func ParseIAR(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid word index: %s", s)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid word index: %s", s)
	}
	return v, nil
}

// ExecuteCommand parses and dispatches a single command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	if cmdLine == "" {
		cmdLine = d.LastCommand
	}

	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun()
	case "continue", "c":
		return d.cmdContinue()
	case "step", "s", "si":
		return d.cmdStep()
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "watch", "w":
		return d.cmdWatch(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "diag":
		return d.cmdDiag()
	case "reset":
		return d.cmdReset()
	case "help", "h", "?":
		return d.cmdHelp()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before the instruction
// at the VM's current IAR executes.
func (d *Debugger) ShouldBreak() (bool, string) {
	iar := d.VM.Regs.IAR

	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	if bp := d.Breakpoints.GetBreakpoint(iar); bp != nil && bp.Enabled {
		if bp.Condition != "" && !evalCondition(d.VM, bp.Condition) {
			return false, ""
		}
		hit := d.Breakpoints.ProcessHit(iar)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM); changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// evalCondition evaluates a simple "gprN==value" breakpoint condition: the
// minimal form this core's register set actually needs, with no general
// expression grammar, flags-register bit expressions, or memory-indirection
// operators, since condition registers are tested directly via "crN.eq"
// below.
func evalCondition(machine *vm.VM, condition string) bool {
	parts := strings.SplitN(condition, "==", 2)
	if len(parts) != 2 {
		return true
	}
	lhs := strings.TrimSpace(parts[0])
	rhs := strings.TrimSpace(parts[1])

	want, err := strconv.ParseUint(strings.TrimPrefix(rhs, "0x"), hexOrDec(rhs), 64)
	if err != nil {
		return true
	}

	if strings.HasPrefix(lhs, "gpr") {
		n, err := strconv.Atoi(strings.TrimPrefix(lhs, "gpr"))
		if err != nil {
			return true
		}
		return machine.Regs.GetGPR(n) == want
	}

	if strings.HasPrefix(lhs, "cr") && strings.Contains(lhs, ".") {
		fieldBit := strings.SplitN(strings.TrimPrefix(lhs, "cr"), ".", 2)
		field, err := strconv.Atoi(fieldBit[0])
		if err != nil || field < 0 || field > 7 {
			return true
		}
		var bit vm.CRBit
		switch fieldBit[1] {
		case "lt":
			bit = vm.CRBitLT
		case "gt":
			bit = vm.CRBitGT
		case "eq":
			bit = vm.CRBitEQ
		case "so":
			bit = vm.CRBitSO
		default:
			return true
		}
		got := uint64(0)
		if machine.Regs.CR[field][bit] {
			got = 1
		}
		return got == want
	}

	return true
}

func hexOrDec(s string) int {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return 16
	}
	return 10
}

// GetOutput returns and clears the buffered output text.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
