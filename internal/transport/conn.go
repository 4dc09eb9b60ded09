// Package transport owns the persistent connection to the triage backend:
// its lifecycle, the session handshake, and the reconnection policy.
package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/triage-client/internal/event"
	"github.com/eleven-am/triage-client/internal/protocol"
	"github.com/eleven-am/triage-client/internal/shared"
	"github.com/gorilla/websocket"
)

// FrameHandler receives inbound frames in arrival order.
type FrameHandler interface {
	HandleText(data []byte)
	HandleBinary(data []byte)
}

type outFrame struct {
	messageType int
	data        []byte
}

// wire is the per-connection socket state. Reconnection replaces the whole
// wire, so pumps from a dead connection can never touch the new one.
type wire struct {
	ws   *websocket.Conn
	send chan outFrame
	done chan struct{}
	once sync.Once
}

func (w *wire) shutdown() {
	w.once.Do(func() {
		close(w.done)
		w.ws.Close()
	})
}

type Conn struct {
	cfg     Config
	bus     *event.Bus
	handler FrameHandler
	log     *slog.Logger

	mu        sync.Mutex
	state     State
	sessionID string
	attempts  int
	wire      *wire
	reconnect *time.Timer
	closing   bool
	stateCB   func(State)
}

func NewConn(cfg Config, bus *event.Bus, handler FrameHandler, log *slog.Logger) *Conn {
	if log == nil {
		log = slog.Default()
	}
	return &Conn{
		cfg:     cfg.withDefaults(),
		bus:     bus,
		handler: handler,
		log:     log.With("component", "transport"),
	}
}

// OnStateChange registers a callback fired on every state transition. The
// callback runs with internal locks held and must not call back into Conn.
func (c *Conn) OnStateChange(cb func(State)) {
	c.mu.Lock()
	c.stateCB = cb
	c.mu.Unlock()
}

// Connect opens the connection and performs the session handshake. An empty
// sessionID generates a fresh one. A dial failure is returned to the caller
// and also enters the reconnection policy.
func (c *Conn) Connect(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return shared.ErrAlreadyOpen
	}
	if sessionID == "" {
		sessionID = shared.NewID("sess_")
	}
	c.sessionID = sessionID
	c.closing = false
	c.attempts = 0
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	return c.dial(ctx)
}

func (c *Conn) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}

	ws, resp, err := dialer.DialContext(ctx, c.cfg.Endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.log.Warn("dial failed", "endpoint", c.cfg.Endpoint, "error", err)
		c.bus.Publish(event.Error{
			Kind:    shared.KindTransport,
			Message: "failed to open connection: " + err.Error(),
		})
		c.scheduleReconnect()
		return err
	}

	w := &wire{
		ws:   ws,
		send: make(chan outFrame, c.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		w.shutdown()
		return shared.ErrNotOpen
	}
	c.wire = w
	c.attempts = 0
	c.setStateLocked(StateOpen)
	sessionID := c.sessionID
	c.mu.Unlock()

	go c.writePump(w)
	go c.readPump(w)

	if err := c.SendControl(protocol.NewSessionInit(sessionID)); err != nil {
		c.log.Warn("handshake send failed", "error", err)
	}

	c.log.Info("connection open", "session_id", sessionID)
	return nil
}

func (c *Conn) readPump(w *wire) {
	defer w.shutdown()

	w.ws.SetReadLimit(maxMessageSize)
	_ = w.ws.SetReadDeadline(time.Now().Add(pongWait))
	w.ws.SetPongHandler(func(string) error {
		_ = w.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, data, err := w.ws.ReadMessage()
		if err != nil {
			c.handleClosed(w, err)
			return
		}

		switch mt {
		case websocket.TextMessage:
			c.handler.HandleText(data)
		case websocket.BinaryMessage:
			c.handler.HandleBinary(data)
		}
	}
}

func (c *Conn) writePump(w *wire) {
	pingPeriod := (pongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case frame := <-w.send:
			_ = w.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.ws.WriteMessage(frame.messageType, frame.data); err != nil {
				c.log.Error("websocket write error", "error", err)
				w.shutdown()
				return
			}

		case <-ticker.C:
			_ = w.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.shutdown()
				return
			}
		}
	}
}

func (c *Conn) handleClosed(w *wire, err error) {
	c.mu.Lock()
	if c.wire != w {
		c.mu.Unlock()
		return
	}
	c.wire = nil

	if c.closing {
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return
	}

	// A normal closure is the server ending the session; everything else
	// enters the reconnection policy.
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		c.log.Info("server closed the session")
		return
	}
	c.mu.Unlock()

	c.bus.Publish(event.Error{
		Kind:    shared.KindTransport,
		Message: "connection lost: " + err.Error(),
	})
	c.scheduleReconnect()
}

func (c *Conn) scheduleReconnect() {
	c.mu.Lock()
	if c.closing {
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return
	}

	c.attempts++
	attempt := c.attempts
	if attempt > c.cfg.Backoff.MaxAttempts {
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		c.log.Warn("reconnect attempts exhausted", "attempts", attempt-1)
		c.bus.Publish(event.Error{
			Kind:    shared.KindTransport,
			Message: "reconnect attempts exhausted, disconnected",
		})
		return
	}

	c.setStateLocked(StateConnecting)
	delay := c.cfg.Backoff.Delay(attempt)
	c.reconnect = time.AfterFunc(delay, c.redial)
	c.mu.Unlock()

	c.log.Info("scheduling reconnect", "attempt", attempt, "delay", delay)
}

func (c *Conn) redial() {
	c.mu.Lock()
	if c.closing {
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return
	}
	c.reconnect = nil
	c.mu.Unlock()

	_ = c.dial(context.Background())
}

// Disconnect closes the connection for good: it cancels any pending
// reconnect timer and sends a normal-closure code so the server does not
// expect the client back.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	c.closing = true
	c.setStateLocked(StateClosing)
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	w := c.wire
	c.wire = nil
	c.mu.Unlock()

	if w != nil {
		deadline := time.Now().Add(writeWait)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = w.ws.WriteControl(websocket.CloseMessage, msg, deadline)
		w.shutdown()
	}

	c.mu.Lock()
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()
}

// SendControl marshals and sends a text control envelope. It fails with
// shared.ErrNotOpen unless the connection is open.
func (c *Conn) SendControl(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.enqueue(websocket.TextMessage, data)
}

// SendAudio sends one encoded chunk as a binary frame. Chunks are
// transmitted in the order they are enqueued.
func (c *Conn) SendAudio(pcm []byte) error {
	return c.enqueue(websocket.BinaryMessage, pcm)
}

func (c *Conn) enqueue(messageType int, data []byte) error {
	c.mu.Lock()
	w, state := c.wire, c.state
	c.mu.Unlock()

	if state != StateOpen || w == nil {
		c.log.Warn("dropping outbound frame, connection not open", "state", state.String())
		return shared.ErrNotOpen
	}

	select {
	case w.send <- outFrame{messageType: messageType, data: data}:
		return nil
	case <-w.done:
		return shared.ErrNotOpen
	default:
		c.log.Warn("send buffer full, dropping frame")
		return nil
	}
}

func (c *Conn) Escalate(reason string) error {
	return c.SendControl(protocol.NewEscalate(c.SessionID(), reason))
}

func (c *Conn) Resolve() error {
	return c.SendControl(protocol.NewResolve(c.SessionID()))
}

func (c *Conn) Ping() error {
	return c.SendControl(protocol.NewPing(c.SessionID()))
}

func (c *Conn) RequestSummary() error {
	return c.SendControl(protocol.NewSummaryRequest(c.SessionID()))
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Conn) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Conn) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.stateCB != nil {
		c.stateCB(s)
	}
}
