package protocol

// Outbound control envelopes. All are text frames with a "type" tag;
// outbound audio travels as raw binary frames.

type SessionInit struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func NewSessionInit(sessionID string) SessionInit {
	return SessionInit{Type: "session_init", SessionID: sessionID}
}

type Escalate struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

func NewEscalate(sessionID, reason string) Escalate {
	return Escalate{Type: "escalate", SessionID: sessionID, Reason: reason}
}

type Resolve struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func NewResolve(sessionID string) Resolve {
	return Resolve{Type: "resolve", SessionID: sessionID}
}

type Ping struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func NewPing(sessionID string) Ping {
	return Ping{Type: "ping", SessionID: sessionID}
}

type SummaryRequest struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func NewSummaryRequest(sessionID string) SummaryRequest {
	return SummaryRequest{Type: "get_summary", SessionID: sessionID}
}
