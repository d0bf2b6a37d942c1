package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency is a display-update interval in cycles for
	// continuous execution. No view reads it.
	DisplayUpdateFrequency = 100
)

// Instruction View Context Constants. There is no source-line view (no
// disassembly output is produced): the TUI instead shows a word-indexed
// hex+mnemonic window around IAR.
const (
	CodeContextWordsBefore        = 20
	CodeContextWordsAfter         = 80
	CodeContextWordsBeforeCompact = 5
	CodeContextWordsAfterCompact  = 10
)

// Memory Display Constants
const (
	MemoryDisplayRows        = 16
	MemoryDisplayColumns     = 16
	MemoryDisplayBytesPerRow = 16
)

// Stack Display Constants
const (
	StackDisplayWords        = 16
	StackDisplayBytes        = 64
	StackInspectionMaxOffset = 16
)

// Register Display Constants
const (
	// RegisterViewRows accounts for 32 GPRs shown 4 per row (8 lines), a blank
	// separator, the IAR/LR/CTR and XER lines, CR0, the cycle count, and the
	// two panel borders.
	RegisterViewRows = 15

	// RegisterGroupSize is the number of GPRs displayed per row.
	RegisterGroupSize = 4
)
