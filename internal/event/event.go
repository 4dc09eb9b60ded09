// Package event defines the domain events derived from inbound frames and
// the bus that fans them out to subscribers.
package event

import "github.com/eleven-am/triage-client/internal/shared"

type Type string

const (
	TypeSessionInitialized  Type = "session_initialized"
	TypeTranscript          Type = "transcript"
	TypeIncidentUpdate      Type = "incident_update"
	TypeDecisionExplanation Type = "decision_explanation"
	TypeTranscriptionStatus Type = "transcription_status"
	TypeAudioAck            Type = "audio_ack"
	TypeError               Type = "error"
	TypePlaybackStarted     Type = "playback_started"
	TypePlaybackFinished    Type = "playback_finished"
)

// Event is the closed set of notifications delivered to subscribers. An
// event carries no reference back to the frame it was derived from.
type Event interface {
	EventType() Type
}

type SessionInitialized struct {
	SessionID string
	Status    string
}

func (SessionInitialized) EventType() Type { return TypeSessionInitialized }

type Transcript struct {
	Text       string
	Speaker    string
	Timestamp  string
	Confidence float64
}

func (Transcript) EventType() Type { return TypeTranscript }

type Incident struct {
	Type            string
	Location        string
	Urgency         string
	UrgencyScore    float64
	CallerName      string
	CallerContact   string
	PeopleAffected  int
	ImmediateDanger bool
	HumanRequired   bool
}

type IncidentUpdate struct {
	SessionID     string
	Incident      Incident
	MissingFields []string
	Confidence    map[string]float64
}

func (IncidentUpdate) EventType() Type { return TypeIncidentUpdate }

type DecisionExplanation struct {
	UrgencyScore       float64
	UrgencyLevel       string
	TopFactors         []string
	WhyEscalated       string
	ConfidenceWarnings []string
}

func (DecisionExplanation) EventType() Type { return TypeDecisionExplanation }

type TranscriptionStatus struct {
	Status     string
	Message    string
	Confidence float64
}

func (TranscriptionStatus) EventType() Type { return TypeTranscriptionStatus }

type AudioAck struct {
	Transcribed bool
	Status      string
}

func (AudioAck) EventType() Type { return TypeAudioAck }

// Error is published for every recoverable failure. Actionable marks
// failures the user can resolve themselves, such as a playback start the
// platform blocks until the user interacts with the page.
type Error struct {
	Kind       shared.Kind
	Message    string
	Actionable bool
}

func (Error) EventType() Type { return TypeError }

type PlaybackStarted struct {
	Bytes int
}

func (PlaybackStarted) EventType() Type { return TypePlaybackStarted }

type PlaybackFinished struct {
	Bytes int
}

func (PlaybackFinished) EventType() Type { return TypePlaybackFinished }
