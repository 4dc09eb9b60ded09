package protocol

import (
	"encoding/json"
	"log/slog"

	"github.com/eleven-am/triage-client/internal/event"
	"github.com/eleven-am/triage-client/internal/shared"
)

// FragmentSink receives inbound binary payloads, which are always
// compressed synthesized-speech fragments.
type FragmentSink interface {
	Enqueue(frag []byte)
}

// Router classifies inbound frames. Binary frames go to the fragment sink
// unchanged; text frames decode into exactly one domain event, one protocol
// Error event, or nothing (unknown tags). No input may take down the read
// loop.
type Router struct {
	bus   *event.Bus
	audio FragmentSink
	log   *slog.Logger
}

func NewRouter(bus *event.Bus, audio FragmentSink, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		bus:   bus,
		audio: audio,
		log:   log.With("component", "router"),
	}
}

func (r *Router) HandleBinary(data []byte) {
	r.audio.Enqueue(data)
}

func (r *Router) HandleText(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.publishDecodeError(err)
		return
	}

	switch env.Type {
	case tagSessionInitialized:
		var msg sessionInitializedMsg
		if !r.decode(data, &msg) {
			return
		}
		r.bus.Publish(event.SessionInitialized{
			SessionID: msg.SessionID,
			Status:    msg.Status,
		})

	case tagTranscript, tagUserTranscript, tagAITranscript:
		var msg transcriptMsg
		if !r.decode(data, &msg) {
			return
		}
		r.bus.Publish(event.Transcript{
			Text:       msg.Text,
			Speaker:    speakerFor(env.Type, msg.Speaker),
			Timestamp:  msg.Timestamp,
			Confidence: msg.Confidence,
		})

	case tagIncidentSummary:
		var msg incidentSummaryMsg
		if !r.decode(data, &msg) {
			return
		}
		body, err := msg.body()
		if err != nil {
			r.publishDecodeError(err)
			return
		}
		r.bus.Publish(event.IncidentUpdate{
			SessionID: msg.SessionID,
			Incident: event.Incident{
				Type:            body.Incident.IncidentType,
				Location:        body.Incident.Location,
				Urgency:         body.Incident.Urgency,
				UrgencyScore:    body.Incident.UrgencyScore,
				CallerName:      body.Incident.Name,
				CallerContact:   body.Incident.CallerContact,
				PeopleAffected:  body.Incident.PeopleAffected,
				ImmediateDanger: body.Incident.ImmediateDanger,
				HumanRequired:   body.Incident.HumanRequired,
			},
			MissingFields: body.MissingFields,
			Confidence:    body.Confidence,
		})

	case tagDecisionExplanation:
		var msg decisionExplanationMsg
		if !r.decode(data, &msg) {
			return
		}
		ev := event.DecisionExplanation{
			UrgencyScore:       msg.UrgencyScore,
			UrgencyLevel:       msg.UrgencyLevel,
			TopFactors:         msg.TopFactors,
			ConfidenceWarnings: msg.ConfidenceWarnings,
		}
		if msg.WhyEscalated != nil {
			ev.WhyEscalated = *msg.WhyEscalated
		}
		r.bus.Publish(ev)

	case tagTranscriptionStatus:
		var msg transcriptionStatusMsg
		if !r.decode(data, &msg) {
			return
		}
		r.bus.Publish(event.TranscriptionStatus{
			Status:     msg.Status,
			Message:    msg.text(),
			Confidence: msg.Confidence,
		})

	case tagError:
		var msg errorMsg
		if !r.decode(data, &msg) {
			return
		}
		r.bus.Publish(event.Error{
			Kind:    shared.KindApplication,
			Message: msg.text(),
		})

	case tagAudioProcessed:
		var msg audioProcessedMsg
		if !r.decode(data, &msg) {
			return
		}
		r.bus.Publish(event.AudioAck{
			Transcribed: msg.Transcribed,
			Status:      msg.Status,
		})

	case tagPong, tagConversationReset:
		// Known control acks with no domain mapping.
		r.log.Debug("control ack", "type", env.Type)

	default:
		r.log.Debug("ignoring unknown message type", "type", env.Type)
	}
}

func (r *Router) decode(data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		r.publishDecodeError(err)
		return false
	}
	return true
}

func (r *Router) publishDecodeError(err error) {
	r.bus.Publish(event.Error{
		Kind:    shared.KindProtocol,
		Message: "failed to decode server message: " + err.Error(),
	})
}

// speakerFor resolves the transcript speaker with a total fallback order:
// the explicit field wins, else the tag implies it, else "unknown".
func speakerFor(tag, speaker string) string {
	if speaker != "" {
		return speaker
	}
	switch tag {
	case tagUserTranscript:
		return "user"
	case tagAITranscript:
		return "ai"
	}
	return "unknown"
}
