package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/crtdll/py-ppc-xex/api"
	"github.com/crtdll/py-ppc-xex/config"
	"github.com/crtdll/py-ppc-xex/debugger"
	"github.com/crtdll/py-ppc-xex/gui"
	"github.com/crtdll/py-ppc-xex/loader"
	"github.com/crtdll/py-ppc-xex/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in CLI debugger mode")
		tuiMode     = flag.Bool("tui", false, "Start in TUI debugger mode")
		guiMode     = flag.Bool("gui", false, "Start in native GUI debugger mode")
		apiServer   = flag.Bool("api-server", false, "Start HTTP+WebSocket inspection API server")
		apiPort     = flag.Int("port", 4040, "API server port (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum cycles before halt (0: use config default)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("ppcx %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	imagePath := flag.Arg(0)
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", imagePath)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loading image: %s\n", imagePath)
	}

	img, err := loader.FromFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	machine := loader.IntoVM(img)
	if *maxCycles > 0 {
		machine.MaxCycles = *maxCycles
	} else {
		machine.MaxCycles = cfg.Execution.MaxCycles
	}

	if *verboseMode {
		fmt.Printf("Entry IAR: 0x%X\n", img.EntryIAR)
		fmt.Printf("Base address: 0x%08X  PE data offset: 0x%08X\n", img.BaseAddress, img.PEDataOffset)
	}

	switch {
	case *tuiMode:
		dbg := debugger.NewDebugger(machine, cfg)
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	case *guiMode:
		dbg := debugger.NewDebugger(machine, cfg)
		if err := gui.Run(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "GUI error: %v\n", err)
			os.Exit(1)
		}
	case *debugMode:
		dbg := debugger.NewDebugger(machine, cfg)
		fmt.Println("ppcx debugger - type 'help' for commands")
		fmt.Printf("Image loaded: %s\n", imagePath)
		fmt.Println()
		if err := debugger.RunCLI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
	default:
		runDirect(machine, *verboseMode)
	}
}

// runDirect executes machine to completion without a debugger attached.
func runDirect(machine *vm.VM, verbose bool) {
	if verbose {
		fmt.Println("Starting execution...")
		fmt.Println("----------------------------------------")
	}

	machine.State = vm.StateRunning
	for machine.State == vm.StateRunning {
		if err := machine.Step(); err != nil {
			fmt.Fprintf(os.Stderr, "\nRuntime error at IAR=0x%X: %v\n", machine.Regs.IAR, err)
			os.Exit(1)
		}
	}

	if verbose {
		fmt.Println("----------------------------------------")
		fmt.Printf("Execution complete. IAR=0x%X cycles=%d\n", machine.Regs.IAR, machine.Cycles)
	}

	for _, d := range machine.Diagnostics() {
		fmt.Fprintf(os.Stderr, "[cycle %d pc=0x%X] %s\n", d.Cycle, d.Address, d.Message)
	}

	if machine.State == vm.StateError {
		os.Exit(1)
	}
}

// runAPIServer starts the HTTP+WebSocket inspection server and blocks until
// interrupted, tearing down active sessions on SIGINT/SIGTERM.
func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func printHelp() {
	fmt.Printf(`ppcx %s - a 32-bit PowerPC Book-E/Xenon instruction interpreter

Usage: ppcx [options] <image-file>
       ppcx -api-server [-port N]

Options:
  -help          Show this help message
  -version       Show version information
  -api-server    Start HTTP+WebSocket inspection API server (no image required)
  -port N        API server port (default: 4040, used with -api-server)
  -debug         Start in CLI debugger mode
  -tui           Start in TUI debugger mode
  -gui           Start in native GUI debugger mode
  -max-cycles N  Maximum cycles before halt (default: from config)
  -verbose       Enable verbose output

An <image-file> is a flat binary plus a JSON sidecar (same base name,
.json extension) describing base_address, pe_data_offset, and entry_iar.

Examples:
  ppcx program.bin
  ppcx -debug program.bin
  ppcx -tui program.bin
  ppcx -gui program.bin
  ppcx -api-server -port 4040

Debugger commands (when in -debug mode):
  run, r             Start/restart execution
  continue, c        Continue execution
  step, s            Execute a single instruction
  break ADDR         Set a breakpoint at a word-index address
  watch gprN         Watch a GPR for changes
  info registers     Show all registers
  print REG          Print a register (gprN, crN, lr, ctr, xer, iar)
  diag               Show the soft-failure diagnostic log
  help               Show debugger help
`, Version)
}
