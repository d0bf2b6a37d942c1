package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/crtdll/py-ppc-xex/vm"
)

// RunCLI runs the line-oriented command interface.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(ppcx-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			for dbg.Running {
				if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
					dbg.Running = false
					fmt.Printf("Stopped: %s at IAR=0x%X\n", reason, dbg.VM.Regs.IAR)
					break
				}

				if err := dbg.VM.Step(); err != nil {
					dbg.Running = false
					fmt.Printf("Runtime error: %v\n", err)
					break
				}

				if dbg.VM.State == vm.StateHalted {
					dbg.Running = false
					fmt.Printf("Program halted at IAR=0x%X (cycles=%d)\n", dbg.VM.Regs.IAR, dbg.VM.Cycles)
					break
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the full-screen debugger interface.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
