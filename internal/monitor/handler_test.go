package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eleven-am/triage-client/internal/transport"
	"github.com/labstack/echo/v4"
)

type fakeConn struct {
	state     transport.State
	sessionID string
	attempts  int
}

func (f *fakeConn) State() transport.State { return f.state }
func (f *fakeConn) SessionID() string      { return f.sessionID }
func (f *fakeConn) Attempts() int          { return f.attempts }

type fakeCapture struct {
	active   bool
	buffered int
}

func (f *fakeCapture) Active() bool  { return f.active }
func (f *fakeCapture) Buffered() int { return f.buffered }

type fakePlayback struct {
	buffered int
}

func (f *fakePlayback) Buffered() int { return f.buffered }

func TestHandler_Liveness(t *testing.T) {
	h := NewHandler(&fakeConn{}, &fakeCapture{}, &fakePlayback{}, "1.2.3")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	if err := h.Liveness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("liveness failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok status, got %q", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", resp.Version)
	}
	if resp.Runtime.Goroutines <= 0 {
		t.Error("expected a positive goroutine count")
	}
}

func TestHandler_Session(t *testing.T) {
	h := NewHandler(
		&fakeConn{state: transport.StateOpen, sessionID: "sess_abc", attempts: 2},
		&fakeCapture{active: true, buffered: 4096},
		&fakePlayback{buffered: 1024},
		"1.2.3",
	)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/session", nil)
	rec := httptest.NewRecorder()

	if err := h.Session(e.NewContext(req, rec)); err != nil {
		t.Fatalf("session failed: %v", err)
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.SessionID != "sess_abc" {
		t.Errorf("expected sess_abc, got %q", resp.SessionID)
	}
	if resp.ConnectionState != "open" {
		t.Errorf("expected open, got %q", resp.ConnectionState)
	}
	if resp.ReconnectAttempts != 2 {
		t.Errorf("expected 2 attempts, got %d", resp.ReconnectAttempts)
	}
	if !resp.CaptureActive || resp.CaptureBuffered != 4096 {
		t.Errorf("unexpected capture snapshot: %+v", resp)
	}
	if resp.PlaybackBuffered != 1024 {
		t.Errorf("expected 1024 buffered playback fragments, got %d", resp.PlaybackBuffered)
	}
}

func TestHandler_SessionWithNilSources(t *testing.T) {
	h := NewHandler(nil, nil, nil, "dev")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/session", nil)
	rec := httptest.NewRecorder()

	if err := h.Session(e.NewContext(req, rec)); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
