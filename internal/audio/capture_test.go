package audio

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/eleven-am/triage-client/internal/shared"
)

type fakeSource struct {
	mu      sync.Mutex
	blocks  chan []float32
	stopped bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{blocks: make(chan []float32, 16)}
}

func (s *fakeSource) Start(ctx context.Context) (<-chan []float32, error) {
	return s.blocks, nil
}

func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeSource) CloseBlocks() {
	close(s.blocks)
}

func (s *fakeSource) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeSink struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error
}

func (s *fakeSink) SendAudio(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.chunks = append(s.chunks, pcm)
	return nil
}

func (s *fakeSink) Chunks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.chunks...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCapture_EmitsFullChunks(t *testing.T) {
	source := newFakeSource()
	sink := &fakeSink{}
	capt := NewCapture(source, sink, 100, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer capt.Stop()

	source.blocks <- make([]float32, 60)
	source.blocks <- make([]float32, 60)

	waitFor(t, func() bool { return len(sink.Chunks()) == 1 })

	if got := len(sink.Chunks()[0]); got != 200 {
		t.Errorf("expected 200-byte chunk, got %d", got)
	}
	waitFor(t, func() bool { return capt.Buffered() == 20 })
}

func TestCapture_StartTwice(t *testing.T) {
	source := newFakeSource()
	capt := NewCapture(source, &fakeSink{}, 100, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer capt.Stop()

	if err := capt.Start(context.Background()); err != shared.ErrCaptureActive {
		t.Errorf("expected ErrCaptureActive, got %v", err)
	}
}

func TestCapture_StopReleasesSource(t *testing.T) {
	source := newFakeSource()
	capt := NewCapture(source, &fakeSink{}, 100, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	capt.Stop()

	if capt.Active() {
		t.Error("capture should be inactive after Stop")
	}
	waitFor(t, source.Stopped)
}

func TestCapture_StopIsIdempotent(t *testing.T) {
	source := newFakeSource()
	capt := NewCapture(source, &fakeSink{}, 100, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	capt.Stop()
	capt.Stop()
}

func TestCapture_NoChunksAfterStop(t *testing.T) {
	source := newFakeSource()
	sink := &fakeSink{}
	capt := NewCapture(source, sink, 10, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	capt.Stop()
	before := len(sink.Chunks())

	// Blocks arriving after Stop must not produce output.
	select {
	case source.blocks <- make([]float32, 100):
	default:
	}

	time.Sleep(50 * time.Millisecond)
	if got := len(sink.Chunks()); got != before {
		t.Errorf("chunks produced after Stop: %d -> %d", before, got)
	}
}

func TestCapture_DropsWhenSinkRejects(t *testing.T) {
	source := newFakeSource()
	sink := &fakeSink{err: shared.ErrNotOpen}
	capt := NewCapture(source, sink, 10, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer capt.Stop()

	source.blocks <- make([]float32, 20)

	// No queueing, no retry: the capture keeps running and the chunk is gone.
	time.Sleep(50 * time.Millisecond)
	if !capt.Active() {
		t.Error("capture should stay active when the sink rejects a chunk")
	}
	if len(sink.Chunks()) != 0 {
		t.Error("rejected chunks should not be delivered")
	}
}

func TestCapture_SourceCloseEndsRun(t *testing.T) {
	source := newFakeSource()
	capt := NewCapture(source, &fakeSink{}, 10, testLogger())

	if err := capt.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	source.CloseBlocks()
	capt.Stop()
}
