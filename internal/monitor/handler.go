// Package monitor exposes a small HTTP surface for inspecting a running
// client: liveness, session state, and buffer occupancy.
package monitor

import (
	"net/http"
	"runtime"
	"time"

	"github.com/eleven-am/triage-client/internal/transport"
	"github.com/labstack/echo/v4"
)

// ConnInfo is the snapshot surface of the transport connection.
type ConnInfo interface {
	State() transport.State
	SessionID() string
	Attempts() int
}

// CaptureInfo reports the capture pipeline.
type CaptureInfo interface {
	Active() bool
	Buffered() int
}

// PlaybackInfo reports the playback queue.
type PlaybackInfo interface {
	Buffered() int
}

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	NumGC         uint32 `json:"num_gc"`
}

type HealthResponse struct {
	Status        string       `json:"status"`
	Timestamp     time.Time    `json:"timestamp"`
	Version       string       `json:"version"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Runtime       RuntimeStats `json:"runtime"`
}

type SessionResponse struct {
	SessionID         string `json:"session_id"`
	ConnectionState   string `json:"connection_state"`
	ReconnectAttempts int    `json:"reconnect_attempts"`
	CaptureActive     bool   `json:"capture_active"`
	CaptureBuffered   int    `json:"capture_buffered_samples"`
	PlaybackBuffered  int    `json:"playback_buffered_fragments"`
}

type Handler struct {
	conn      ConnInfo
	capture   CaptureInfo
	playback  PlaybackInfo
	version   string
	startTime time.Time
}

func NewHandler(conn ConnInfo, capture CaptureInfo, playback PlaybackInfo, version string) *Handler {
	return &Handler{
		conn:      conn,
		capture:   capture,
		playback:  playback,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/session", h.Session)
}

func (h *Handler) Liveness(c echo.Context) error {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Runtime: RuntimeStats{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: memStats.Alloc / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	})
}

func (h *Handler) Session(c echo.Context) error {
	resp := SessionResponse{}

	if h.conn != nil {
		resp.SessionID = h.conn.SessionID()
		resp.ConnectionState = h.conn.State().String()
		resp.ReconnectAttempts = h.conn.Attempts()
	}
	if h.capture != nil {
		resp.CaptureActive = h.capture.Active()
		resp.CaptureBuffered = h.capture.Buffered()
	}
	if h.playback != nil {
		resp.PlaybackBuffered = h.playback.Buffered()
	}

	return c.JSON(http.StatusOK, resp)
}
