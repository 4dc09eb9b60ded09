// Package audio owns microphone capture and the float-to-PCM16 encoding of
// outbound chunks.
package audio

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eleven-am/triage-client/internal/shared"
)

const (
	DefaultSampleRate = 16000

	// DefaultChunkThreshold is 500ms of audio at the default sample rate.
	// Chunks are always exactly this many samples.
	DefaultChunkThreshold = DefaultSampleRate / 2
)

// Source is the capture device. Start acquires it and returns a channel of
// normalized sample blocks; Stop releases it and closes the channel.
type Source interface {
	Start(ctx context.Context) (<-chan []float32, error)
	Stop() error
}

// Sink receives encoded chunks for transmission. It returns
// shared.ErrNotOpen when the connection cannot take the chunk.
type Sink interface {
	SendAudio(pcm []byte) error
}

type Capture struct {
	source Source
	sink   Sink
	log    *slog.Logger

	mu     sync.Mutex
	enc    *Encoder
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCapture(source Source, sink Sink, threshold int, log *slog.Logger) *Capture {
	if log == nil {
		log = slog.Default()
	}
	return &Capture{
		source: source,
		sink:   sink,
		log:    log.With("component", "capture"),
		enc:    NewEncoder(threshold),
	}
}

// Start acquires the source and begins consuming sample blocks. The source
// is released on every exit path: explicit Stop, source error, or context
// cancellation.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return shared.ErrCaptureActive
	}
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)

	blocks, err := c.source.Start(ctx)
	if err != nil {
		cancel()
		return err
	}

	c.mu.Lock()
	c.active = true
	c.cancel = cancel
	c.done = make(chan struct{})
	c.enc.Reset()
	done := c.done
	c.mu.Unlock()

	go c.run(ctx, blocks, done)
	return nil
}

func (c *Capture) run(ctx context.Context, blocks <-chan []float32, done chan struct{}) {
	defer close(done)
	defer c.source.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-blocks:
			if !ok {
				return
			}

			c.mu.Lock()
			if !c.active {
				c.mu.Unlock()
				return
			}
			chunks := c.enc.Push(block)
			c.mu.Unlock()

			for _, chunk := range chunks {
				if err := c.sink.SendAudio(chunk); err != nil {
					// Fail-soft: the chunk is dropped rather than queued.
					c.log.Warn("audio chunk dropped",
						"bytes", len(chunk),
						"error", err)
				}
			}
		}
	}
}

// Stop clears the active flag before the consumer can produce more output,
// then releases the source. No chunk is handed to the sink after Stop
// returns. Stop is idempotent.
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Capture) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Buffered()
}
