// Package gui provides a native Fyne-based register/memory/stack viewer
// for the interpreter: no source panel (there is no disassembly-text
// surface), no console redirection, a word-indexed instruction list
// instead of a source view.
package gui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/crtdll/py-ppc-xex/debugger"
	"github.com/crtdll/py-ppc-xex/vm"
)

// GUI is the native window wrapping a debugger.Debugger.
type GUI struct {
	Debugger *debugger.Debugger
	App      fyne.App
	Window   fyne.Window

	CodeView        *widget.TextGrid
	RegisterView    *widget.TextGrid
	MemoryView      *widget.TextGrid
	StackView       *widget.TextGrid
	BreakpointsList *widget.List
	StatusLabel     *widget.Label

	Toolbar *widget.Toolbar

	MemoryAddress uint32

	breakpoints []string
	mu          sync.Mutex
}

// Run opens the GUI window over dbg and blocks until it is closed.
func Run(dbg *debugger.Debugger) error {
	g := newGUI(dbg)
	g.Window.ShowAndRun()
	return nil
}

func newGUI(dbg *debugger.Debugger) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("PowerPC Interpreter Debugger")

	g := &GUI{
		Debugger:    dbg,
		App:         myApp,
		Window:      myWindow,
		breakpoints: []string{},
	}

	g.initializeViews()
	g.buildLayout()
	g.setupToolbar()

	myWindow.Resize(fyne.NewSize(1200, 800))
	return g
}

func (g *GUI) initializeViews() {
	g.CodeView = widget.NewTextGrid()
	g.RegisterView = widget.NewTextGrid()
	g.MemoryView = widget.NewTextGrid()
	g.StackView = widget.NewTextGrid()

	g.BreakpointsList = widget.NewList(
		func() int { return len(g.breakpoints) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(g.breakpoints[id])
		},
	)

	g.StatusLabel = widget.NewLabel("Ready")

	g.updateViews()
}

func (g *GUI) buildLayout() {
	codePanel := container.NewBorder(widget.NewLabel("Instructions"), nil, nil, nil, container.NewScroll(g.CodeView))
	registerPanel := container.NewBorder(widget.NewLabel("Registers"), nil, nil, nil, container.NewScroll(g.RegisterView))
	memoryPanel := container.NewBorder(widget.NewLabel("Image Memory"), nil, nil, nil, container.NewScroll(g.MemoryView))
	stackPanel := container.NewBorder(widget.NewLabel("Stack"), nil, nil, nil, container.NewScroll(g.StackView))
	breakpointsPanel := container.NewBorder(widget.NewLabel("Breakpoints"), nil, nil, nil, container.NewScroll(g.BreakpointsList))

	leftPanel := container.NewMax(codePanel)

	bottomTabs := container.NewAppTabs(
		container.NewTabItem("Memory", memoryPanel),
		container.NewTabItem("Stack", stackPanel),
	)

	rightTop := container.NewVSplit(registerPanel, breakpointsPanel)
	rightTop.SetOffset(0.6)

	rightPanel := container.NewVSplit(rightTop, bottomTabs)
	rightPanel.SetOffset(0.5)

	mainSplit := container.NewHSplit(leftPanel, rightPanel)
	mainSplit.SetOffset(0.5)

	statusBar := container.NewBorder(nil, nil, nil, nil, g.StatusLabel)

	content := container.NewBorder(g.Toolbar, statusBar, nil, nil, mainSplit)
	g.Window.SetContent(content)
}

func (g *GUI) setupToolbar() {
	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaPlayIcon(), g.runProgram),
		widget.NewToolbarAction(theme.MediaSkipNextIcon(), g.stepProgram),
		widget.NewToolbarAction(theme.MediaFastForwardIcon(), g.runProgram),
		widget.NewToolbarAction(theme.MediaStopIcon(), g.stopProgram),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), g.addBreakpoint),
		widget.NewToolbarAction(theme.ContentClearIcon(), g.clearBreakpoints),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), g.updateViews),
	)
}

func (g *GUI) updateViews() {
	g.updateCode()
	g.updateRegisters()
	g.updateMemory()
	g.updateStack()
	g.updateBreakpoints()
}

func (g *GUI) updateCode() {
	g.mu.Lock()
	defer g.mu.Unlock()

	var sb strings.Builder
	iar := g.Debugger.VM.Regs.IAR
	before := uint64(20)
	start := uint64(0)
	if iar > before {
		start = iar - before
	}

	for i := start; i < start+60; i++ {
		raw, err := g.Debugger.VM.Memory.FetchWord(i)
		if err != nil {
			break
		}
		marker := "  "
		if i == iar {
			marker = "->"
		}
		if g.Debugger.Breakpoints.GetBreakpoint(i) != nil {
			marker = "* "
		}
		sb.WriteString(fmt.Sprintf("%s0x%04X: %08X  %s\n", marker, i, raw, vm.Mnemonic(raw)))
	}

	g.CodeView.SetText(sb.String())
}

func (g *GUI) updateRegisters() {
	var sb strings.Builder
	regs := g.Debugger.VM.Regs

	sb.WriteString("General Purpose Registers:\n")
	for i := 0; i < 32; i++ {
		sb.WriteString(fmt.Sprintf("gpr%-2d: 0x%016X\n", i, regs.GetGPR(i)))
	}

	sb.WriteString("\nSpecial Registers:\n")
	sb.WriteString(fmt.Sprintf("iar: 0x%X\n", regs.IAR))
	sb.WriteString(fmt.Sprintf("lr:  0x%X\n", regs.LR))
	sb.WriteString(fmt.Sprintf("ctr: 0x%X\n", regs.CTR))
	sb.WriteString(fmt.Sprintf("xer: 0x%08X (so=%v ov=%v ca=%v)\n", regs.XER.Value, regs.XER.SO(), regs.XER.OV(), regs.XER.CA()))

	cr0 := regs.CR[0]
	sb.WriteString(fmt.Sprintf("cr0: lt=%v gt=%v eq=%v so=%v\n", cr0[vm.CRBitLT], cr0[vm.CRBitGT], cr0[vm.CRBitEQ], cr0[vm.CRBitSO]))

	g.RegisterView.SetText(sb.String())
}

func (g *GUI) updateMemory() {
	var sb strings.Builder

	addr := g.MemoryAddress
	if addr == 0 {
		addr = uint32(g.Debugger.VM.Regs.IAR * 4)
	}

	image := g.Debugger.VM.Memory.Image
	sb.WriteString(fmt.Sprintf("Memory at 0x%08X:\n", addr))

	for row := 0; row < 16; row++ {
		rowOff := int(addr) + row*16
		if rowOff >= len(image) {
			break
		}
		sb.WriteString(fmt.Sprintf("%08X: ", rowOff))

		var ascii strings.Builder
		for col := 0; col < 16; col++ {
			idx := rowOff + col
			if idx >= len(image) {
				sb.WriteString("?? ")
				ascii.WriteByte('?')
				continue
			}
			b := image[idx]
			sb.WriteString(fmt.Sprintf("%02X ", b))
			if b >= 32 && b < 127 {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}
		sb.WriteString(" " + ascii.String() + "\n")
	}

	g.MemoryView.SetText(sb.String())
}

func (g *GUI) updateStack() {
	var sb strings.Builder

	sp := g.Debugger.VM.Regs.GetGPR(1)
	sb.WriteString(fmt.Sprintf("GPR1 (stack offset) = 0x%X\n", sp))

	for i := 0; i < 16; i++ {
		off := int64(sp) + int64(i*4)
		if off < 0 || off+4 > int64(len(g.Debugger.VM.Memory.Stack)) {
			break
		}
		val := g.Debugger.VM.Memory.ReadWidth(1, sp, int32(i*4), 4)
		marker := "  "
		if i == 0 {
			marker = "->"
		}
		sb.WriteString(fmt.Sprintf("%s0x%X: 0x%08X\n", marker, off, val))
	}

	g.StackView.SetText(sb.String())
}

func (g *GUI) updateBreakpoints() {
	bps := g.Debugger.Breakpoints.GetAllBreakpoints()
	g.breakpoints = make([]string, 0, len(bps))
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		g.breakpoints = append(g.breakpoints, fmt.Sprintf("0x%X (%s, hits=%d)", bp.IAR, status, bp.HitCount))
	}
	g.BreakpointsList.Refresh()
}

func (g *GUI) runProgram() {
	g.StatusLabel.SetText("Running...")
	g.Debugger.VM.State = vm.StateRunning

	go func() {
		for g.Debugger.VM.State == vm.StateRunning {
			if shouldBreak, reason := g.Debugger.ShouldBreak(); shouldBreak {
				g.StatusLabel.SetText(fmt.Sprintf("Stopped: %s at IAR=0x%X", reason, g.Debugger.VM.Regs.IAR))
				g.updateViews()
				return
			}
			if err := g.Debugger.VM.Step(); err != nil {
				g.StatusLabel.SetText(fmt.Sprintf("Error: %v", err))
				g.updateViews()
				return
			}
			if g.Debugger.VM.State == vm.StateHalted {
				g.StatusLabel.SetText(fmt.Sprintf("Halted at IAR=0x%X", g.Debugger.VM.Regs.IAR))
				g.updateViews()
				return
			}
		}
	}()
}

func (g *GUI) stepProgram() {
	if g.Debugger.VM.State == vm.StateHalted {
		g.StatusLabel.SetText("Program has halted")
		return
	}

	if err := g.Debugger.VM.Step(); err != nil {
		g.StatusLabel.SetText(fmt.Sprintf("Error: %v", err))
		g.updateViews()
		return
	}

	if g.Debugger.VM.State == vm.StateHalted {
		g.StatusLabel.SetText(fmt.Sprintf("Halted at IAR=0x%X", g.Debugger.VM.Regs.IAR))
	} else {
		g.StatusLabel.SetText(fmt.Sprintf("Stepped to IAR=0x%X", g.Debugger.VM.Regs.IAR))
	}
	g.updateViews()
}

func (g *GUI) stopProgram() {
	g.Debugger.VM.State = vm.StateHalted
	g.StatusLabel.SetText("Stopped")
	g.updateViews()
}

func (g *GUI) addBreakpoint() {
	iar := g.Debugger.VM.Regs.IAR
	g.Debugger.Breakpoints.AddBreakpoint(iar, false, "")
	g.updateBreakpoints()
	g.StatusLabel.SetText(fmt.Sprintf("Breakpoint added at 0x%X", iar))
}

func (g *GUI) clearBreakpoints() {
	g.Debugger.Breakpoints.Clear()
	g.updateBreakpoints()
	g.StatusLabel.SetText("All breakpoints cleared")
}
