package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// ReaderSource adapts a stream of little-endian PCM16 (a file, a pipe from
// an external recorder) into the Source interface, delivering fixed-size
// blocks of normalized samples paced at the capture rate.
type ReaderSource struct {
	r          io.Reader
	sampleRate int
	blockSize  int

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func NewReaderSource(r io.Reader, sampleRate, blockSize int) *ReaderSource {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if blockSize <= 0 {
		blockSize = sampleRate / 10
	}
	return &ReaderSource{
		r:          r,
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
}

func (s *ReaderSource) Start(ctx context.Context) (<-chan []float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil, errors.New("reader source already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = false

	out := make(chan []float32)
	go s.pump(ctx, out)
	return out, nil
}

func (s *ReaderSource) pump(ctx context.Context, out chan<- []float32) {
	defer close(out)

	interval := time.Duration(s.blockSize) * time.Second / time.Duration(s.sampleRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	buf := make([]byte, s.blockSize*2)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := io.ReadFull(s.r, buf)
		if n > 0 {
			block := Float32FromPCM16(PCM16FromBytes(buf[:n-n%2]))
			select {
			case out <- block:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *ReaderSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
