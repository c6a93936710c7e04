package realtime

import (
	"sync"

	"github.com/innut/innut/pkg/metrics"
)

// Channel is one open delivery connection. Send must not block; a channel
// that cannot accept the message returns ErrTransport.
type Channel interface {
	ID() string
	Send(Message) error
	Close() error
}

// Registry maps user identities to their open channels. A channel is
// registered under at most one user at a time.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Channel
	owners map[string]string
}

// NewRegistry constructs an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]Channel),
		owners: make(map[string]string),
	}
}

// Register adds ch to the active set of userID. Registering a channel that
// already belongs to another user moves it.
func (r *Registry) Register(userID string, ch Channel) {
	if userID == "" || ch == nil {
		return
	}
	id := ch.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[id]; ok {
		if owner == userID {
			return
		}
		r.removeLocked(id, owner)
	}

	channels := r.byUser[userID]
	if channels == nil {
		channels = make(map[string]Channel)
		r.byUser[userID] = channels
	}
	channels[id] = ch
	r.owners[id] = userID
	metrics.RealtimeChannels.Set(float64(len(r.owners)))
}

// Unregister removes ch from whichever user set holds it. Unknown channels
// are ignored. It reports whether the channel was registered.
func (r *Registry) Unregister(ch Channel) bool {
	if ch == nil {
		return false
	}
	id := ch.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return false
	}
	r.removeLocked(id, owner)
	metrics.RealtimeChannels.Set(float64(len(r.owners)))
	return true
}

func (r *Registry) removeLocked(id, owner string) {
	delete(r.owners, id)
	channels := r.byUser[owner]
	delete(channels, id)
	if len(channels) == 0 {
		delete(r.byUser, owner)
	}
}

// ChannelsFor returns a snapshot of the channels registered for userID.
func (r *Registry) ChannelsFor(userID string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := r.byUser[userID]
	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch)
	}
	return out
}

// All returns a snapshot of every registered channel.
func (r *Registry) All() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Channel, 0, len(r.owners))
	for _, channels := range r.byUser {
		for _, ch := range channels {
			out = append(out, ch)
		}
	}
	return out
}

// UserOf reports the user a channel is registered under.
func (r *Registry) UserOf(ch Channel) (string, bool) {
	if ch == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[ch.ID()]
	return owner, ok
}

// Stats returns the number of registered channels and distinct users.
func (r *Registry) Stats() (channels, users int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners), len(r.byUser)
}
