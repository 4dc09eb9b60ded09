package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eleven-am/triage-client/internal/audio"
	"github.com/eleven-am/triage-client/internal/event"
	"github.com/eleven-am/triage-client/internal/playback"
	"github.com/eleven-am/triage-client/internal/protocol"
	"github.com/eleven-am/triage-client/internal/shared"
	"github.com/eleven-am/triage-client/internal/transport"
	"go.uber.org/fx"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideBus(logger *slog.Logger) *event.Bus {
	return event.NewBus(logger.With("component", "bus"))
}

func ProvidePlayer(cfg *Config, logger *slog.Logger) playback.Player {
	if cfg.PlayerCommand != "" {
		return playback.NewCommandPlayer(logger, cfg.PlayerCommand, cfg.PlayerArgs...)
	}
	return playback.NewDiscardPlayer(logger)
}

func ProvideScheduler(player playback.Player, bus *event.Bus, cfg *Config, logger *slog.Logger) *playback.Scheduler {
	return playback.NewScheduler(player, bus, cfg.IdleWindow(), logger)
}

func ProvideRouter(bus *event.Bus, sched *playback.Scheduler, logger *slog.Logger) *protocol.Router {
	return protocol.NewRouter(bus, sched, logger)
}

func ProvideConn(cfg *Config, bus *event.Bus, router *protocol.Router, logger *slog.Logger) *transport.Conn {
	return transport.NewConn(cfg.TransportConfig(), bus, router, logger)
}

// ProvideSource builds the capture source: stdin when audio_input is "-",
// otherwise a PCM16 file replayed at the configured sample rate.
func ProvideSource(cfg *Config) (audio.Source, error) {
	var r io.Reader
	if cfg.AudioInput == "-" || cfg.AudioInput == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(cfg.AudioInput)
		if err != nil {
			return nil, fmt.Errorf("audio input: %w", err)
		}
		r = f
	}
	return audio.NewReaderSource(r, cfg.SampleRate, cfg.SampleRate/10), nil
}

func ProvideCapture(source audio.Source, conn *transport.Conn, cfg *Config, logger *slog.Logger) *audio.Capture {
	return audio.NewCapture(source, conn, cfg.ChunkThreshold, logger)
}

// logEvents mirrors every domain event onto the structured log so the CLI
// shows the conversation without a UI.
func logEvents(bus *event.Bus, logger *slog.Logger) {
	log := logger.With("component", "events")
	bus.Subscribe(func(ev event.Event) {
		switch e := ev.(type) {
		case event.SessionInitialized:
			log.Info("session initialized", "session_id", e.SessionID, "status", e.Status)
		case event.Transcript:
			log.Info("transcript", "speaker", e.Speaker, "text", e.Text)
		case event.IncidentUpdate:
			log.Info("incident update",
				"type", e.Incident.Type,
				"location", e.Incident.Location,
				"urgency", e.Incident.Urgency,
				"missing_fields", e.MissingFields)
		case event.DecisionExplanation:
			log.Info("decision explanation",
				"urgency_level", e.UrgencyLevel,
				"urgency_score", e.UrgencyScore,
				"factors", e.TopFactors)
		case event.TranscriptionStatus:
			log.Info("transcription status", "status", e.Status)
		case event.AudioAck:
			log.Debug("audio processed", "transcribed", e.Transcribed, "status", e.Status)
		case event.Error:
			log.Warn("error event", "kind", e.Kind, "message", e.Message, "actionable", e.Actionable)
		case event.PlaybackStarted:
			log.Debug("playback started", "bytes", e.Bytes)
		case event.PlaybackFinished:
			log.Debug("playback finished", "bytes", e.Bytes)
		}
	})
}

// StartClient ties the pipeline to the fx lifecycle: connect and start
// capturing on start, tear everything down in reverse order on stop.
func StartClient(
	lc fx.Lifecycle,
	cfg *Config,
	conn *transport.Conn,
	capture *audio.Capture,
	sched *playback.Scheduler,
	bus *event.Bus,
	logger *slog.Logger,
) {
	logEvents(bus, logger)

	// Anything buffered for playback is stale once the connection drops.
	conn.OnStateChange(func(s transport.State) {
		if s == transport.StateDisconnected {
			sched.Reset()
		}
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// A dial failure is not fatal here: the reconnection policy
			// is already running and capture drops chunks until it wins.
			if err := conn.Connect(ctx, cfg.SessionID); err != nil {
				logger.Warn("initial connect failed, retrying in background", "error", err)
			}
			if err := capture.Start(context.Background()); err != nil {
				bus.Publish(event.Error{
					Kind:    shared.KindResource,
					Message: "audio capture unavailable: " + err.Error(),
				})
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			capture.Stop()
			conn.Disconnect()
			sched.Close()
			return nil
		},
	})
}

var ClientModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideBus,
		ProvidePlayer,
		ProvideScheduler,
		ProvideRouter,
		ProvideConn,
		ProvideSource,
		ProvideCapture,
	),
	fx.Invoke(StartClient),
)
