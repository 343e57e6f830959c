// Package eventbus provides the in-process bus carrying engine events
// (recommendation results, coverage alerts, forecast updates) to metrics
// collectors and other listeners.
package eventbus

import "sync"

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is a simple publish/subscribe bus. Delivery is best-effort: a
// subscriber that falls behind drops events rather than blocking the
// publisher.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

const defaultBuffer = 16

// Bus is the default EventBus implementation using fan-out channels.
type Bus struct {
	mu     sync.RWMutex
	subs   map[<-chan Event]chan Event
	buffer int
	closed bool
}

// New creates a Bus with the default per-subscriber buffer.
func New() *Bus { return NewWithBuffer(defaultBuffer) }

// NewWithBuffer creates a Bus whose subscriber channels hold up to n
// undelivered events.
func NewWithBuffer(n int) *Bus {
	if n < 1 {
		n = 1
	}
	return &Bus{subs: make(map[<-chan Event]chan Event), buffer: n}
}

// Publish sends the event to all subscribers without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel. The
// channel is closed on Unsubscribe or Close.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[sub]
	if !ok {
		return
	}
	delete(b.subs, sub)
	close(ch)
}

// Close closes all subscriber channels and clears the registry.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
