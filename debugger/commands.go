package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crtdll/py-ppc-xex/vm"
)

// cmdRun resets the VM and starts execution from its entry point.
func (d *Debugger) cmdRun() error {
	d.VM.Bootstrap(d.VM.EntryIAR)
	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone

	d.Println("Starting execution...")
	return nil
}

// cmdContinue resumes execution from the current IAR.
func (d *Debugger) cmdContinue() error {
	if d.VM.State == vm.StateHalted {
		return fmt.Errorf("program is not running")
	}

	d.VM.State = vm.StateRunning
	d.Running = true
	d.StepMode = StepNone

	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction.
func (d *Debugger) cmdStep() error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdBreak sets a breakpoint at a word index, with an optional
// "if <condition>" suffix.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <word-index> [if <condition>]")
	}

	iar, err := ParseIAR(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(iar, false, condition)

	if condition != "" {
		d.Printf("Breakpoint %d at 0x%X (condition: %s)\n", bp.ID, iar, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%X\n", bp.ID, iar)
	}

	return nil
}

// cmdTBreak sets a temporary breakpoint that auto-deletes after its first hit.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <word-index>")
	}

	iar, err := ParseIAR(args[0])
	if err != nil {
		return err
	}

	bp := d.Breakpoints.AddBreakpoint(iar, true, "")
	d.Printf("Temporary breakpoint %d at 0x%X\n", bp.ID, iar)
	return nil
}

// cmdDelete deletes breakpoint(s) by ID, or all breakpoints if no ID given.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

// cmdEnable enables a breakpoint by ID.
func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

// cmdDisable disables a breakpoint by ID.
func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}

	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}

	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on a GPR ("gpr3") or a stack byte offset
// ("stack[0x20]"); any other form, including a bare number, is rejected.
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <gprN|stack[offset]>")
	}

	expr := strings.ToLower(strings.Join(args, " "))

	var wp *Watchpoint
	switch {
	case strings.HasPrefix(expr, "gpr"):
		n, err := strconv.Atoi(strings.TrimPrefix(expr, "gpr"))
		if err != nil || n < 0 || n > 31 {
			return fmt.Errorf("invalid GPR: %s", expr)
		}
		wp = d.Watchpoints.AddRegisterWatchpoint(n)

	case strings.HasPrefix(expr, "stack[") && strings.HasSuffix(expr, "]"):
		inner := strings.TrimSuffix(strings.TrimPrefix(expr, "stack["), "]")
		idx, err := ParseIAR(inner)
		if err != nil {
			return fmt.Errorf("invalid stack offset: %s", inner)
		}
		wp = d.Watchpoints.AddStackWatchpoint(int(idx))

	default:
		return fmt.Errorf("invalid watch expression: %s (use gprN or stack[offset])", expr)
	}

	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.VM); err != nil {
		d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}

	d.Printf("Watchpoint %d: %s\n", wp.ID, wp.Expression)
	return nil
}

// cmdPrint prints a GPR, a condition register field, or a special-purpose
// register (lr, ctr, xer, iar).
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <gprN|lr|ctr|xer|iar|crN>")
	}

	name := strings.ToLower(args[0])

	switch {
	case name == "iar":
		d.Printf("iar = 0x%X\n", d.VM.Regs.IAR)
	case name == "lr":
		d.Printf("lr = 0x%X\n", d.VM.Regs.LR)
	case name == "ctr":
		d.Printf("ctr = 0x%X\n", d.VM.Regs.CTR)
	case name == "xer":
		d.Printf("xer = 0x%08X (so=%v ov=%v ca=%v)\n",
			d.VM.Regs.XER.Value, d.VM.Regs.XER.SO(), d.VM.Regs.XER.OV(), d.VM.Regs.XER.CA())
	case strings.HasPrefix(name, "gpr"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "gpr"))
		if err != nil || n < 0 || n > 31 {
			return fmt.Errorf("invalid GPR: %s", name)
		}
		v := d.VM.Regs.GetGPR(n)
		d.Printf("gpr%d = 0x%X (%d)\n", n, v, int64(v))
	case strings.HasPrefix(name, "cr"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "cr"))
		if err != nil || n < 0 || n > 7 {
			return fmt.Errorf("invalid CR field: %s", name)
		}
		f := d.VM.Regs.CR[n]
		d.Printf("cr%d = lt=%v gt=%v eq=%v so=%v\n", n, f[vm.CRBitLT], f[vm.CRBitGT], f[vm.CRBitEQ], f[vm.CRBitSO])
	default:
		return fmt.Errorf("unknown register: %s", name)
	}
	return nil
}

// cmdInfo shows summary information: "info registers", "info breakpoints",
// or "info watchpoints".
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints>")
	}

	switch strings.ToLower(args[0]) {
	case "registers", "reg", "regs":
		d.Println(d.VM.DumpState())
		for i := 0; i < 32; i += 4 {
			d.Printf("gpr%-2d=0x%016X gpr%-2d=0x%016X gpr%-2d=0x%016X gpr%-2d=0x%016X\n",
				i, d.VM.Regs.GetGPR(i), i+1, d.VM.Regs.GetGPR(i+1), i+2, d.VM.Regs.GetGPR(i+2), i+3, d.VM.Regs.GetGPR(i+3))
		}

	case "breakpoints", "break", "b":
		bps := d.Breakpoints.GetAllBreakpoints()
		if len(bps) == 0 {
			d.Println("No breakpoints set")
			return nil
		}
		for _, bp := range bps {
			state := "enabled"
			if !bp.Enabled {
				state = "disabled"
			}
			d.Printf("%d: 0x%X %s hits=%d", bp.ID, bp.IAR, state, bp.HitCount)
			if bp.Condition != "" {
				d.Printf(" if %s", bp.Condition)
			}
			d.Println()
		}

	case "watchpoints", "watch", "w":
		wps := d.Watchpoints.GetAllWatchpoints()
		if len(wps) == 0 {
			d.Println("No watchpoints set")
			return nil
		}
		for _, wp := range wps {
			d.Printf("%d: %s hits=%d last=0x%X\n", wp.ID, wp.Expression, wp.HitCount, wp.LastValue)
		}

	default:
		return fmt.Errorf("unknown info subcommand: %s", args[0])
	}
	return nil
}

// cmdDiag dumps the soft-failure diagnostics log.
func (d *Debugger) cmdDiag() error {
	entries := d.VM.Diagnostics()
	if len(entries) == 0 {
		d.Println("No diagnostics recorded")
		return nil
	}
	for _, e := range entries {
		d.Printf("[cycle %d pc=0x%X] %s\n", e.Cycle, e.Address, e.Message)
	}
	return nil
}

// cmdReset reinitializes the VM's register file and stack without
// re-fetching the image, leaving breakpoints and watchpoints intact.
func (d *Debugger) cmdReset() error {
	d.VM.Regs.Reset()
	clear(d.VM.Memory.Stack)
	d.VM.Bootstrap(d.VM.EntryIAR)
	d.Running = false
	d.StepMode = StepNone
	d.Println("VM reset")
	return nil
}

// cmdHelp lists available commands.
func (d *Debugger) cmdHelp() error {
	d.Println("Commands:")
	d.Println("  run, r                  reset and start execution")
	d.Println("  continue, c             resume execution")
	d.Println("  step, s, si             execute one instruction")
	d.Println("  break, b <idx> [if c]   set a breakpoint")
	d.Println("  tbreak, tb <idx>        set a temporary breakpoint")
	d.Println("  delete, d [id]          delete breakpoint(s)")
	d.Println("  enable/disable <id>     toggle a breakpoint")
	d.Println("  watch, w <gprN|stack[n]> set a watchpoint")
	d.Println("  print, p <reg>          print a register")
	d.Println("  info, i <what>          registers | breakpoints | watchpoints")
	d.Println("  diag                    show soft-failure diagnostics")
	d.Println("  reset                   reinitialize the VM")
	d.Println("  help, h, ?              this message")
	return nil
}
