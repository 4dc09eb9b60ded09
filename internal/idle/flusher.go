// Package idle provides an accumulate-until-quiet primitive: callers touch
// the flusher on every arrival, and the callback fires once no arrival has
// happened for a full window.
package idle

import (
	"sync"
	"time"
)

type Flusher struct {
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *time.Timer
}

func NewFlusher(window time.Duration, fn func()) *Flusher {
	return &Flusher{
		window: window,
		fn:     fn,
	}
}

// Touch arms the timer, replacing any pending one. The callback runs only
// after a full quiet window with no further touches.
func (f *Flusher) Touch() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.window, f.fn)
}

// Cancel drops any pending callback. The flusher stays usable; a later
// Touch arms it again.
func (f *Flusher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Flusher) Window() time.Duration {
	return f.window
}
