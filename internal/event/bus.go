package event

import (
	"log/slog"
	"sync"
)

type Handler func(Event)

type Bus struct {
	log *slog.Logger

	mu   sync.RWMutex
	next int
	subs map[int]Handler
}

func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		log:  log,
		subs: make(map[int]Handler),
	}
}

// Subscription identifies one registered handler. Go functions are not
// comparable, so removal goes through the token instead of the handler
// itself.
type Subscription struct {
	bus *Bus
	id  int
}

func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
}

func (b *Bus) Subscribe(fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs[id] = fn
	return Subscription{bus: b, id: id}
}

// Publish delivers the event to every currently subscribed handler. A panic
// in one handler is caught and logged so it never prevents delivery to the
// rest. Delivery order across handlers is unspecified.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		b.deliver(fn, ev)
	}
}

func (b *Bus) deliver(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked", "event", ev.EventType(), "panic", r)
		}
	}()
	fn(ev)
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
