package pipeline

import (
	"sync"

	"go.uber.org/zap"
)

const eventBufferSize = 64

// Broadcaster decouples the generation pipeline from the wire format.
// The pipeline publishes events; the HTTP handler drains Events until
// the channel is closed.
type Broadcaster struct {
	events    chan Event
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
	log       *zap.Logger
}

func NewBroadcaster(log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		events: make(chan Event, eventBufferSize),
		log:    log,
	}
}

// Events returns the stream the consumer reads from. It is closed when the
// pipeline finishes, successfully or not.
func (b *Broadcaster) Events() <-chan Event {
	return b.events
}

// Publish enqueues an event without blocking. If the consumer has stopped
// draining and the buffer is full, the event is dropped and logged; a slow
// or disconnected client must never stall generation.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.log.Warn("event published after stream closed", zap.String("type", string(ev.Type)))
		return
	}
	select {
	case b.events <- ev:
	default:
		b.log.Warn("event buffer full, dropping event", zap.String("type", string(ev.Type)))
	}
}

// Close terminates the stream. Safe to call more than once.
func (b *Broadcaster) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.events)
	})
}
