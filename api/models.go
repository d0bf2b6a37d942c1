package api

import "time"

// SessionCreateRequest describes the image to load into a new session's VM.
// ImageBase64 stands in for loader.Image.Data: the API has no filesystem
// access to a client's machine, so the image bytes travel over the wire
// instead of being read from a path the way loader.FromFile does for the CLI.
type SessionCreateRequest struct {
	ImageBase64  string `json:"imageBase64"`
	BaseAddress  uint32 `json:"baseAddress"`
	PEDataOffset uint32 `json:"peDataOffset"`
	EntryIAR     uint64 `json:"entryIar"`
}

// SessionCreateResponse represents the response from creating a session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse represents the current status of a session.
type SessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	IAR       uint64 `json:"iar"`
	Cycles    uint64 `json:"cycles"`
	Error     string `json:"error,omitempty"`
}

// RegistersResponse represents the current register state.
type RegistersResponse struct {
	GPR    [32]uint64 `json:"gpr"`
	IAR    uint64     `json:"iar"`
	LR     uint64     `json:"lr"`
	CTR    uint64     `json:"ctr"`
	XER    XERFlags   `json:"xer"`
	CR0    CRFlags    `json:"cr0"`
	Cycles uint64     `json:"cycles"`
}

// XERFlags represents the summary bits of the XER register.
type XERFlags struct {
	SO bool `json:"so"`
	OV bool `json:"ov"`
	CA bool `json:"ca"`
}

// CRFlags represents one condition register field (CR0..CR7).
type CRFlags struct {
	LT bool `json:"lt"`
	GT bool `json:"gt"`
	EQ bool `json:"eq"`
	SO bool `json:"so"`
}

// MemoryResponse represents a window of image memory.
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// CodeResponse represents a decoded window of instructions around IAR.
type CodeResponse struct {
	Lines []CodeLine `json:"lines"`
}

// CodeLine is one decoded instruction in a CodeResponse.
type CodeLine struct {
	IAR      uint64 `json:"iar"`
	Raw      uint32 `json:"raw"`
	Mnemonic string `json:"mnemonic"`
}

// BreakpointRequest represents a request to add a breakpoint.
type BreakpointRequest struct {
	IAR       uint64 `json:"iar"`
	Temporary bool   `json:"temporary"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointInfo describes one breakpoint for API responses.
type BreakpointInfo struct {
	ID        int    `json:"id"`
	IAR       uint64 `json:"iar"`
	Enabled   bool   `json:"enabled"`
	Temporary bool   `json:"temporary"`
	Condition string `json:"condition,omitempty"`
	HitCount  int    `json:"hitCount"`
}

// BreakpointsResponse represents a list of breakpoints.
type BreakpointsResponse struct {
	Breakpoints []BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest represents a request to add a watchpoint.
type WatchpointRequest struct {
	Register   *int `json:"register,omitempty"`
	StackIndex *int `json:"stackIndex,omitempty"`
}

// WatchpointInfo describes one watchpoint for API responses.
type WatchpointInfo struct {
	ID         int    `json:"id"`
	Expression string `json:"expression"`
	Enabled    bool   `json:"enabled"`
	LastValue  uint64 `json:"lastValue"`
	HitCount   int    `json:"hitCount"`
}

// WatchpointsResponse represents a list of watchpoints.
type WatchpointsResponse struct {
	Watchpoints []WatchpointInfo `json:"watchpoints"`
}

// DiagnosticEntry mirrors vm.Diagnostic for API responses.
type DiagnosticEntry struct {
	Cycle   uint64 `json:"cycle"`
	Address uint64 `json:"address"`
	Message string `json:"message"`
}

// DiagnosticsResponse represents the soft-failure log of a session.
type DiagnosticsResponse struct {
	Diagnostics []DiagnosticEntry `json:"diagnostics"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ConfigResponse mirrors the subset of config.Config relevant to API clients.
type ConfigResponse struct {
	MaxCycles     uint64 `json:"maxCycles"`
	StackCapacity uint   `json:"stackCapacity"`
	HistorySize   int    `json:"historySize"`
}
