package notify

import (
	"sync"

	"github.com/mikey/email-defender/internal/core"
	"go.uber.org/zap"
)

// DefaultBufferSize is the number of undelivered events kept per notifier
const DefaultBufferSize = 16

// ChannelNotifier queues game events for a frontend goroutine to consume.
// Notify never blocks the game loop. Level-ups are dropped when the buffer
// is full; one slot stays reserved so the game-over event always fits.
type ChannelNotifier struct {
	mu     sync.Mutex
	events chan core.Event
	size   int
	final  bool
	logger *zap.Logger
}

// NewChannelNotifier creates a notifier with room for size pending events
// plus the game-over event
func NewChannelNotifier(size int, logger *zap.Logger) *ChannelNotifier {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelNotifier{
		events: make(chan core.Event, size+1),
		size:   size,
		logger: logger,
	}
}

// Notify queues event
func (n *ChannelNotifier) Notify(event core.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if event.Kind == core.EventGameOver {
		if n.final {
			n.logger.Warn("Ignoring repeated game over event", zap.String("message", event.Message))
			return
		}
		n.final = true
		n.events <- event
		return
	}

	if len(n.events) >= n.size {
		n.logger.Warn("Dropping game event, consumer is behind",
			zap.String("kind", string(event.Kind)),
			zap.String("message", event.Message))
		return
	}
	n.events <- event
}

// Events returns the queue of pending events
func (n *ChannelNotifier) Events() <-chan core.Event {
	return n.events
}
