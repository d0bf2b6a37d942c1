package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(0)
}

// addiR0R0Zero is the big-endian encoding of "addi r0, r0, 0" (primary
// opcode 14, RT=RA=0, D=0), used to fill test images with a harmless,
// decodable instruction instead of all-zero bytes (opcode 0 is unassigned
// and faults the VM on fetch).
const addiR0R0Zero = 0x38000000

func testImage(words int) []byte {
	image := make([]byte, words*4)
	for i := 0; i < words; i++ {
		off := i * 4
		image[off+0] = byte(addiR0R0Zero >> 24)
		image[off+1] = byte(addiR0R0Zero >> 16)
		image[off+2] = byte(addiR0R0Zero >> 8)
		image[off+3] = byte(addiR0R0Zero)
	}
	return image
}

func createTestSession(t *testing.T, s *Server) string {
	t.Helper()

	image := testImage(64)
	body, err := json.Marshal(SessionCreateRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		BaseAddress: 0x1000,
		EntryIAR:    0,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SessionCreateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.SessionID
}

func TestHandleCreateSession(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)
	assert.NotEmpty(t, sessionID)
}

func TestHandleGetSessionStatus(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "halted", resp.State)
}

func TestHandleGetSessionStatusNotFound(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/nonexistent", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetRegisters(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID+"/registers", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RegistersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint64(0), resp.IAR)
}

func TestHandleStep(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/"+sessionID+"/step", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RegistersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint64(1), resp.IAR)
}

func TestHandleSetAndListBreakpoints(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	body, err := json.Marshal(BreakpointRequest{IAR: 4})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/"+sessionID+"/breakpoint", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID+"/breakpoints", nil)
	listRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)

	var resp BreakpointsResponse
	require.NoError(t, json.NewDecoder(listRec.Body).Decode(&resp))
	require.Len(t, resp.Breakpoints, 1)
	assert.Equal(t, uint64(4), resp.Breakpoints[0].IAR)
}

func TestHandleSetRegisterWatchpoint(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	reg := 3
	body, err := json.Marshal(WatchpointRequest{Register: &reg})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/"+sessionID+"/watchpoint", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var info WatchpointInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.NotEmpty(t, info.Expression)
}

func TestHandleGetMemory(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID+"/memory?address=0&length=16", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp MemoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 16)
}

func TestHandleGetMemoryRejectsOversizedLength(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID+"/memory?address=0&length=999999999", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDiagnostics(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID+"/diagnostics", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DiagnosticsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
}

func TestHandleDestroySession(t *testing.T) {
	s := newTestServer()
	sessionID := createTestSession(t, s)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session/"+sessionID, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	statusReq := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+sessionID, nil)
	statusRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(statusRec, statusReq)
	assert.Equal(t, http.StatusNotFound, statusRec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
