package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/crtdll/py-ppc-xex/debugger"
	"github.com/crtdll/py-ppc-xex/vm"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	machine := session.VM
	response := SessionStatusResponse{
		SessionID: sessionID,
		State:     stateString(machine.State),
		IAR:       machine.Regs.IAR,
		Cycles:    machine.Cycles,
	}
	if machine.LastError != nil {
		response.Error = machine.LastError.Error()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session destroyed"})
}

// handleRun handles POST /api/v1/session/{id}/run: runs until halted, a
// breakpoint, or an error, broadcasting the final state.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	go func() {
		dbg := session.Debugger
		machine := session.VM
		machine.State = vm.StateRunning
		for machine.State == vm.StateRunning {
			if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
				s.broadcastExecutionEvent(sessionID, "breakpoint_hit", reason, machine)
				return
			}
			if stepErr := machine.Step(); stepErr != nil {
				s.broadcastExecutionEvent(sessionID, "error", stepErr.Error(), machine)
				return
			}
			if machine.State == vm.StateHalted {
				s.broadcastExecutionEvent(sessionID, "halted", "", machine)
				return
			}
		}
	}()

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Program started"})
}

// handleStop handles POST /api/v1/session/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.VM.State = vm.StateHalted
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Program stopped"})
}

// handleStep handles POST /api/v1/session/{id}/step
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := session.VM.Step(); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	s.broadcastStateChange(sessionID, session.VM)
	writeJSON(w, http.StatusOK, ToRegistersResponse(session.VM))
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.VM.Bootstrap(session.VM.EntryIAR)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "VM reset"})
}

// handleGetRegisters handles GET /api/v1/session/{id}/registers
func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, ToRegistersResponse(session.VM))
}

// handleGetMemory handles GET /api/v1/session/{id}/memory?address=&length=
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	query := r.URL.Query()
	address, err := parseHexOrDec(query.Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid address parameter")
		return
	}

	length, err := strconv.ParseUint(query.Get("length"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid length parameter")
		return
	}

	const maxMemoryRead = 1024 * 1024
	if length > maxMemoryRead {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Length too large (max %d bytes)", maxMemoryRead))
		return
	}

	image := session.VM.Memory.Image
	start := int(address)
	end := start + int(length)
	if start < 0 || start > len(image) {
		writeError(w, http.StatusBadRequest, "Address out of range")
		return
	}
	if end > len(image) {
		end = len(image)
	}

	writeJSON(w, http.StatusOK, MemoryResponse{
		Address: uint32(address), // #nosec G115 -- parseHexOrDec validates input fits in uint32
		Data:    image[start:end],
	})
}

// handleGetCode handles GET /api/v1/session/{id}/code: a decoded window of
// instructions around IAR, mirroring the debugger TUI/GUI code panel.
func (s *Server) handleGetCode(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	machine := session.VM
	before := uint64(debugger.CodeContextWordsBefore)
	after := uint64(debugger.CodeContextWordsAfter)
	iar := machine.Regs.IAR
	start := uint64(0)
	if iar > before {
		start = iar - before
	}

	lines := make([]CodeLine, 0, before+after)
	for i := start; i < iar+after; i++ {
		raw, fetchErr := machine.Memory.FetchWord(i)
		if fetchErr != nil {
			break
		}
		lines = append(lines, CodeLine{IAR: i, Raw: raw, Mnemonic: vm.Mnemonic(raw)})
	}

	writeJSON(w, http.StatusOK, CodeResponse{Lines: lines})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		bp := session.Debugger.Breakpoints.AddBreakpoint(req.IAR, req.Temporary, req.Condition)
		writeJSON(w, http.StatusOK, toBreakpointInfo(bp))

	case http.MethodDelete:
		var req BreakpointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		bp := session.Debugger.Breakpoints.GetBreakpoint(req.IAR)
		if bp == nil {
			writeError(w, http.StatusNotFound, "No breakpoint at that address")
			return
		}
		if err := session.Debugger.Breakpoints.DeleteBreakpoint(bp.ID); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to remove breakpoint: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	bps := session.Debugger.Breakpoints.GetAllBreakpoints()
	infos := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		infos[i] = toBreakpointInfo(bp)
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: infos})
}

// handleWatchpoint handles POST /api/v1/session/{id}/watchpoint
func (s *Server) handleWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var wp *debugger.Watchpoint
	switch {
	case req.Register != nil:
		wp = session.Debugger.Watchpoints.AddRegisterWatchpoint(*req.Register)
	case req.StackIndex != nil:
		wp = session.Debugger.Watchpoints.AddStackWatchpoint(*req.StackIndex)
	default:
		writeError(w, http.StatusBadRequest, "Must specify register or stackIndex")
		return
	}

	writeJSON(w, http.StatusOK, toWatchpointInfo(wp))
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{watchpointID}
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string, watchpointID int) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Debugger.Watchpoints.DeleteWatchpoint(watchpointID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Failed to remove watchpoint: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Watchpoint removed"})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	wps := session.Debugger.Watchpoints.GetAllWatchpoints()
	infos := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		infos[i] = toWatchpointInfo(wp)
	}

	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: infos})
}

// handleDiagnostics handles GET /api/v1/session/{id}/diagnostics
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	entries := session.VM.Diagnostics()
	out := make([]DiagnosticEntry, len(entries))
	for i, e := range entries {
		out[i] = DiagnosticEntry{Cycle: e.Cycle, Address: e.Address, Message: e.Message}
	}

	writeJSON(w, http.StatusOK, DiagnosticsResponse{Diagnostics: out})
}

// handleGetConfig handles GET /api/v1/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.getDefaultConfig())
}

// handleUpdateConfig handles PUT /api/v1/config
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cfg ConfigResponse
	if err := readJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Configuration updated"})
}

// getDefaultConfig returns default configuration as an API response.
func (s *Server) getDefaultConfig() ConfigResponse {
	cfg := s.defaultConfig
	return ConfigResponse{
		MaxCycles:     cfg.Execution.MaxCycles,
		StackCapacity: cfg.Execution.StackCapacity,
		HistorySize:   cfg.Debugger.HistorySize,
	}
}

func stateString(state vm.State) string {
	switch state {
	case vm.StateHalted:
		return "halted"
	case vm.StateRunning:
		return "running"
	case vm.StateError:
		return "error"
	default:
		return "unknown"
	}
}

// parseHexOrDec parses s as either hexadecimal (0x prefix) or decimal.
func parseHexOrDec(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	if len(s) > 2 && s[:2] == "0x" {
		return strconv.ParseUint(s[2:], 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}

func toBreakpointInfo(bp *debugger.Breakpoint) BreakpointInfo {
	return BreakpointInfo{
		ID:        bp.ID,
		IAR:       bp.IAR,
		Enabled:   bp.Enabled,
		Temporary: bp.Temporary,
		Condition: bp.Condition,
		HitCount:  bp.HitCount,
	}
}

func toWatchpointInfo(wp *debugger.Watchpoint) WatchpointInfo {
	return WatchpointInfo{
		ID:         wp.ID,
		Expression: wp.Expression,
		Enabled:    wp.Enabled,
		LastValue:  wp.LastValue,
		HitCount:   wp.HitCount,
	}
}

// ToRegistersResponse converts a VM's register file into an API response.
func ToRegistersResponse(machine *vm.VM) RegistersResponse {
	regs := machine.Regs
	var gpr [32]uint64
	for i := 0; i < 32; i++ {
		gpr[i] = regs.GetGPR(i)
	}

	cr0 := regs.CR[0]
	return RegistersResponse{
		GPR: gpr,
		IAR: regs.IAR,
		LR:  regs.LR,
		CTR: regs.CTR,
		XER: XERFlags{SO: regs.XER.SO(), OV: regs.XER.OV(), CA: regs.XER.CA()},
		CR0: CRFlags{
			LT: cr0[vm.CRBitLT],
			GT: cr0[vm.CRBitGT],
			EQ: cr0[vm.CRBitEQ],
			SO: cr0[vm.CRBitSO],
		},
		Cycles: machine.Cycles,
	}
}

// broadcastStateChange broadcasts a register/state snapshot to WebSocket clients.
func (s *Server) broadcastStateChange(sessionID string, machine *vm.VM) {
	if s.broadcaster == nil {
		return
	}

	regs := ToRegistersResponse(machine)
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{
		"state":  stateString(machine.State),
		"iar":    regs.IAR,
		"cycles": regs.Cycles,
		"gpr":    regs.GPR,
	})
}

// broadcastExecutionEvent broadcasts a run-loop stop reason (breakpoint hit,
// halt, or error) along with the stopping register snapshot.
func (s *Server) broadcastExecutionEvent(sessionID, eventName, message string, machine *vm.VM) {
	if s.broadcaster == nil {
		return
	}

	regs := ToRegistersResponse(machine)
	s.broadcaster.BroadcastExecutionEvent(sessionID, eventName, map[string]interface{}{
		"message": message,
		"iar":     regs.IAR,
		"cycles":  regs.Cycles,
	})
}
