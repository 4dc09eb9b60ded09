// Package playback assembles inbound synthesized-speech fragments into
// playable units and schedules them on a single player.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/triage-client/internal/event"
	"github.com/eleven-am/triage-client/internal/idle"
	"github.com/eleven-am/triage-client/internal/shared"
)

// DefaultIdleWindow is how long the fragment stream must stay quiet before
// the buffer is treated as one complete utterance.
const DefaultIdleWindow = 300 * time.Millisecond

// ErrPlaybackBlocked is returned by a Player when the platform refuses to
// start playback for a policy reason, typically requiring a user
// interaction first.
var ErrPlaybackBlocked = errors.New("playback blocked by platform policy")

// Player turns one playable unit into audible output. Play blocks until
// playback ends or fails.
type Player interface {
	Play(ctx context.Context, unit []byte) error
}

// Scheduler buffers fragments between utterances. Mutual exclusion between
// playbacks is structural: a single worker goroutine is the only thing that
// ever plays, so no two playbacks can overlap regardless of how fragments
// burst in.
type Scheduler struct {
	player  Player
	bus     *event.Bus
	log     *slog.Logger
	flusher *idle.Flusher

	mu    sync.Mutex
	frags [][]byte

	kick      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func NewScheduler(player Player, bus *event.Bus, window time.Duration, log *slog.Logger) *Scheduler {
	if window <= 0 {
		window = DefaultIdleWindow
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		player: player,
		bus:    bus,
		log:    log.With("component", "playback"),
		kick:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.flusher = idle.NewFlusher(window, s.signal)

	go s.run()
	return s
}

// Enqueue appends one fragment and re-arms the idle-flush timer. Fragments
// arriving while a playback is in progress stay buffered and are picked up
// as soon as that playback ends.
func (s *Scheduler) Enqueue(frag []byte) {
	if len(frag) == 0 {
		return
	}

	buf := make([]byte, len(frag))
	copy(buf, frag)

	s.mu.Lock()
	s.frags = append(s.frags, buf)
	s.mu.Unlock()

	s.flusher.Touch()
}

// Reset clears the buffer and any pending flush. Called on disconnect.
func (s *Scheduler) Reset() {
	s.flusher.Cancel()
	s.mu.Lock()
	s.frags = nil
	s.mu.Unlock()
}

func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.flusher.Cancel()
		s.cancel()
		<-s.done
	})
}

func (s *Scheduler) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frags)
}

func (s *Scheduler) signal() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
			// Continuation policy: after each playback, anything that
			// accumulated meanwhile plays immediately, no idle wait.
			for {
				unit := s.drain()
				if unit == nil {
					break
				}
				s.play(unit)
			}
		}
	}
}

func (s *Scheduler) drain() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.frags) == 0 {
		return nil
	}

	total := 0
	for _, f := range s.frags {
		total += len(f)
	}

	unit := make([]byte, 0, total)
	for _, f := range s.frags {
		unit = append(unit, f...)
	}
	s.frags = nil
	return unit
}

func (s *Scheduler) play(unit []byte) {
	s.bus.Publish(event.PlaybackStarted{Bytes: len(unit)})

	if err := s.player.Play(s.ctx, unit); err != nil {
		// A failed attempt must never stall the pipeline: clear whatever
		// accumulated and report, then keep consuming.
		s.mu.Lock()
		s.frags = nil
		s.mu.Unlock()

		if errors.Is(err, ErrPlaybackBlocked) {
			s.bus.Publish(event.Error{
				Kind:       shared.KindPlayback,
				Message:    "audio playback requires a user interaction",
				Actionable: true,
			})
		} else {
			s.bus.Publish(event.Error{
				Kind:    shared.KindPlayback,
				Message: "playback failed: " + err.Error(),
			})
		}
		s.log.Warn("playback attempt failed", "bytes", len(unit), "error", err)
		return
	}

	s.bus.Publish(event.PlaybackFinished{Bytes: len(unit)})
}
