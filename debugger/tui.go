package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/crtdll/py-ppc-xex/vm"
)

// TUI is the full-screen debugger interface.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	CodeView        *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	DiagnosticsView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

// NewTUI creates the TUI over dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.CodeView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.CodeView.SetBorder(true).SetTitle(" Instructions ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Image Memory ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.DiagnosticsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DiagnosticsView.SetBorder(true).SetTitle(" Diagnostics ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.CodeView, 0, 3, false).
		AddItem(t.DiagnosticsView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, RegisterViewRows, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		for t.Debugger.Running {
			if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[yellow]Stopped:[white] %s at IAR=0x%X\n", reason, t.Debugger.VM.Regs.IAR))
				break
			}
			if err := t.Debugger.VM.Step(); err != nil {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("[red]Runtime error:[white] %v\n", err))
				break
			}
			if t.Debugger.VM.State == vm.StateHalted {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("Halted at IAR=0x%X (cycles=%d)\n", t.Debugger.VM.Regs.IAR, t.Debugger.VM.Cycles))
				break
			}
		}
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels.
func (t *TUI) RefreshAll() {
	t.UpdateCodeView()
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateDiagnosticsView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateCodeView shows a word-indexed hex+mnemonic window around IAR. There
// is no disassembly-text output surface: this view exists only as an
// interactive debugging aid, not a generated artifact.
func (t *TUI) UpdateCodeView() {
	t.CodeView.Clear()

	iar := t.Debugger.VM.Regs.IAR
	before := uint64(CodeContextWordsBefore)
	start := uint64(0)
	if iar > before {
		start = iar - before
	}

	var lines []string
	for i := start; i < start+uint64(CodeContextWordsBefore+CodeContextWordsAfter); i++ {
		raw, err := t.Debugger.VM.Memory.FetchWord(i)
		if err != nil {
			break
		}

		marker := "  "
		color := "white"
		if i == iar {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(i) != nil {
			marker = "* "
		}

		lines = append(lines, fmt.Sprintf("[%s]%s 0x%04X: %08X  %s[white]", color, marker, i, raw, vm.Mnemonic(raw)))
	}

	t.CodeView.SetText(strings.Join(lines, "\n"))
}

// UpdateRegisterView shows the GPR file, IAR/LR/CTR/XER, and CR0.
func (t *TUI) UpdateRegisterView() {
	t.RegisterView.Clear()

	regs := t.Debugger.VM.Regs
	var lines []string

	for row := 0; row < 32; row += RegisterGroupSize {
		var cols []string
		for col := 0; col < RegisterGroupSize; col++ {
			n := row + col
			cols = append(cols, fmt.Sprintf("r%-2d: 0x%016X", n, regs.GetGPR(n)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("iar: 0x%X  lr: 0x%X  ctr: 0x%X", regs.IAR, regs.LR, regs.CTR))
	lines = append(lines, fmt.Sprintf("xer: 0x%08X (so=%v ov=%v ca=%v)", regs.XER.Value, regs.XER.SO(), regs.XER.OV(), regs.XER.CA()))

	cr0 := regs.CR[0]
	flag := func(set bool, ch byte) byte {
		if set {
			return ch
		}
		return '-'
	}
	lines = append(lines, fmt.Sprintf("cr0: [%c%c%c%c]",
		flag(cr0[vm.CRBitLT], 'L'), flag(cr0[vm.CRBitGT], 'G'), flag(cr0[vm.CRBitEQ], 'E'), flag(cr0[vm.CRBitSO], 'S')))
	lines = append(lines, fmt.Sprintf("cycles: %d", t.Debugger.VM.Cycles))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

// UpdateMemoryView shows a hex dump of the image region around IAR's
// corresponding byte offset.
func (t *TUI) UpdateMemoryView() {
	t.MemoryView.Clear()

	addr := t.MemoryAddress
	if addr == 0 {
		addr = uint32(t.Debugger.VM.Regs.IAR * 4)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Offset: 0x%08X[white]", addr))

	image := t.Debugger.VM.Memory.Image
	for row := 0; row < MemoryDisplayRows; row++ {
		rowOff := int(addr) + row*MemoryDisplayBytesPerRow
		if rowOff >= len(image) {
			break
		}

		line := fmt.Sprintf("0x%08X: ", rowOff)
		var hexBytes []string
		var asciiBytes []byte

		for col := 0; col < MemoryDisplayColumns; col++ {
			idx := rowOff + col
			if idx >= len(image) {
				hexBytes = append(hexBytes, "??")
				asciiBytes = append(asciiBytes, '.')
				continue
			}
			b := image[idx]
			hexBytes = append(hexBytes, fmt.Sprintf("%02X", b))
			if b >= 32 && b < 127 {
				asciiBytes = append(asciiBytes, b)
			} else {
				asciiBytes = append(asciiBytes, '.')
			}
		}

		line += strings.Join(hexBytes, " ") + "  " + string(asciiBytes)
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

// UpdateStackView shows words around GPR[1], the stack-region offset.
func (t *TUI) UpdateStackView() {
	t.StackView.Clear()

	sp := t.Debugger.VM.Regs.GetGPR(1)
	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]GPR1 (stack offset): 0x%X[white]", sp))

	for i := 0; i < StackDisplayWords; i++ {
		off := int64(sp) + int64(i*4)
		if off < 0 || off+4 > int64(len(t.Debugger.VM.Memory.Stack)) {
			break
		}
		val := t.Debugger.VM.Memory.ReadWidth(1, sp, int32(i*4), 4)

		marker := "  "
		if i == 0 {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s 0x%X: 0x%08X", marker, off, val))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

// UpdateDiagnosticsView shows the soft-failure diagnostics log.
func (t *TUI) UpdateDiagnosticsView() {
	t.DiagnosticsView.Clear()

	entries := t.Debugger.VM.Diagnostics()
	if len(entries) == 0 {
		t.DiagnosticsView.SetText("[yellow]No diagnostics recorded[white]")
		return
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[cycle %d pc=0x%X] %s", e.Cycle, e.Address, e.Message))
	}
	t.DiagnosticsView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView shows breakpoints and watchpoints.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			line := fmt.Sprintf("  %d: [%s]%s[white] 0x%X", bp.ID, color, status, bp.IAR)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, fmt.Sprintf("  %d: %s = 0x%X (hits: %d)", wp.ID, wp.Expression, wp.LastValue, wp.HitCount))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]PowerPC interpreter debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
