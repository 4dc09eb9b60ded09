// Package protocol defines the wire envelopes exchanged with the triage
// backend and the router that turns inbound frames into domain events.
package protocol

import "encoding/json"

// Inbound message tags. Anything else on the wire is ignored for forward
// compatibility.
const (
	tagSessionInitialized  = "session_initialized"
	tagTranscript          = "transcript"
	tagUserTranscript      = "user_transcript"
	tagAITranscript        = "ai_transcript"
	tagIncidentSummary     = "incident_summary"
	tagDecisionExplanation = "decision_explanation"
	tagTranscriptionStatus = "transcription_status"
	tagError               = "error"
	tagAudioProcessed      = "audio_processed"
	tagPong                = "pong"
	tagConversationReset   = "conversation_reset"
)

type envelope struct {
	Type string `json:"type"`
}

type sessionInitializedMsg struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type transcriptMsg struct {
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker"`
	Timestamp  string  `json:"timestamp"`
	Confidence float64 `json:"confidence"`
}

type incidentMsg struct {
	IncidentType    string  `json:"incident_type"`
	Location        string  `json:"location"`
	Urgency         string  `json:"urgency"`
	UrgencyScore    float64 `json:"urgency_score"`
	Name            string  `json:"name"`
	CallerContact   string  `json:"caller_contact"`
	PeopleAffected  int     `json:"people_affected"`
	ImmediateDanger bool    `json:"immediate_danger"`
	HumanRequired   bool    `json:"human_required"`
}

type incidentSummaryBody struct {
	Incident      incidentMsg        `json:"incident"`
	MissingFields []string           `json:"missing_fields"`
	Confidence    map[string]float64 `json:"confidence"`
}

// incidentSummaryMsg tolerates both envelope shapes the backend has used:
// the payload under "summary", or under "incident_data". The fallback order
// is total: summary if present, else incident_data, else an empty summary.
type incidentSummaryMsg struct {
	SessionID    string           `json:"session_id"`
	Summary      *json.RawMessage `json:"summary"`
	IncidentData *json.RawMessage `json:"incident_data"`
}

func (m *incidentSummaryMsg) body() (incidentSummaryBody, error) {
	var raw *json.RawMessage
	switch {
	case m.Summary != nil:
		raw = m.Summary
	case m.IncidentData != nil:
		raw = m.IncidentData
	default:
		return incidentSummaryBody{}, nil
	}

	var body incidentSummaryBody
	if err := json.Unmarshal(*raw, &body); err != nil {
		return incidentSummaryBody{}, err
	}
	return body, nil
}

type decisionExplanationMsg struct {
	UrgencyScore       float64  `json:"urgency_score"`
	UrgencyLevel       string   `json:"urgency_level"`
	TopFactors         []string `json:"top_3_contributing_factors"`
	WhyEscalated       *string  `json:"why_escalated"`
	ConfidenceWarnings []string `json:"confidence_warnings"`
}

// transcriptionStatusMsg reads the human-readable text from "message" when
// present, else "reason". The fallback order is total.
type transcriptionStatusMsg struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

func (m *transcriptionStatusMsg) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Reason
}

// errorMsg reads "message" when present, else the "error" code. The
// fallback order is total.
type errorMsg struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m *errorMsg) text() string {
	if m.Message != "" {
		return m.Message
	}
	if m.Error != "" {
		return m.Error
	}
	return "unspecified server error"
}

type audioProcessedMsg struct {
	Transcribed bool   `json:"transcribed"`
	Status      string `json:"status"`
}
