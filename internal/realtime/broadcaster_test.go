package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifyUserReachesEveryChannel(t *testing.T) {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry)

	a, b, other := newFakeChannel(), newFakeChannel(), newFakeChannel()
	registry.Register("u1", a)
	registry.Register("u1", b)
	registry.Register("u2", other)

	msg := Message{Event: EventNotification, Data: map[string]string{"text": "hi"}}
	require.Equal(t, 2, broadcaster.NotifyUser("u1", msg))

	require.Equal(t, []Message{msg}, a.received())
	require.Equal(t, []Message{msg}, b.received())
	require.Empty(t, other.received())
}

func TestNotifyUserDropsFailingChannel(t *testing.T) {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry)

	healthy, stale := newFakeChannel(), newFakeChannel()
	stale.fail = true
	registry.Register("u1", stale)
	registry.Register("u1", healthy)

	delivered := broadcaster.NotifyUser("u1", Message{Event: EventNotification})
	require.Equal(t, 1, delivered)
	require.Len(t, healthy.received(), 1)

	require.True(t, stale.isClosed())
	require.Equal(t, []string{healthy.ID()}, ids(registry.ChannelsFor("u1")))
}

func TestNotifyUserUnknownUser(t *testing.T) {
	broadcaster := NewBroadcaster(NewRegistry())
	require.Zero(t, broadcaster.NotifyUser("nobody", Message{Event: EventNotification}))
	require.Zero(t, broadcaster.NotifyUser("", Message{Event: EventNotification}))
}

func TestNotifyUserPreservesOrderPerChannel(t *testing.T) {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry)
	ch := newFakeChannel()
	registry.Register("u1", ch)

	for _, event := range []string{"first", "second", "third"} {
		broadcaster.NotifyUser("u1", Message{Event: event})
	}

	var got []string
	for _, msg := range ch.received() {
		got = append(got, msg.Event)
	}
	require.Equal(t, []string{"first", "second", "third"}, got)
}

func TestBroadcastAll(t *testing.T) {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry)

	a, b, stale := newFakeChannel(), newFakeChannel(), newFakeChannel()
	stale.fail = true
	registry.Register("u1", a)
	registry.Register("u2", b)
	registry.Register("u3", stale)

	require.Equal(t, 2, broadcaster.BroadcastAll(Message{Event: EventPresence}))
	require.Len(t, a.received(), 1)
	require.Len(t, b.received(), 1)
	require.Len(t, registry.All(), 2)
}
