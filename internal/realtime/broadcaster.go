package realtime

import (
	"go.uber.org/zap"

	"github.com/innut/innut/pkg/logger"
	"github.com/innut/innut/pkg/metrics"
)

// Broadcaster pushes events to registered channels. Delivery is best effort:
// a channel that fails is unregistered and closed, and nothing is retried.
type Broadcaster struct {
	registry *Registry
	log      *zap.Logger
}

// NewBroadcaster constructs a broadcaster over registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		log:      logger.WithModule("realtime"),
	}
}

// Registry exposes the presence registry backing the broadcaster.
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// NotifyUser delivers msg to every channel registered for userID and returns
// the number of channels that accepted it.
func (b *Broadcaster) NotifyUser(userID string, msg Message) int {
	if b == nil || userID == "" {
		return 0
	}
	return b.deliver(b.registry.ChannelsFor(userID), msg)
}

// BroadcastAll delivers msg to every registered channel. It is meant for
// connection lifecycle diagnostics.
func (b *Broadcaster) BroadcastAll(msg Message) int {
	if b == nil {
		return 0
	}
	return b.deliver(b.registry.All(), msg)
}

func (b *Broadcaster) deliver(channels []Channel, msg Message) int {
	delivered := 0
	for _, ch := range channels {
		if err := ch.Send(msg); err != nil {
			b.drop(ch, msg.Event, err)
			continue
		}
		delivered++
		metrics.NotificationDeliveries.WithLabelValues("delivered").Inc()
	}
	return delivered
}

func (b *Broadcaster) drop(ch Channel, event string, err error) {
	metrics.NotificationDeliveries.WithLabelValues("dropped").Inc()
	b.registry.Unregister(ch)
	_ = ch.Close()
	b.log.Debug("dropping stale channel",
		zap.String("channel_id", ch.ID()),
		zap.String("event", event),
		zap.Error(err),
	)
}
