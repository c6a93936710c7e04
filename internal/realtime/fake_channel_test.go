package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type fakeChannel struct {
	id string

	mu       sync.Mutex
	messages []Message
	fail     bool
	closed   bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{id: uuid.NewString()}
}

func (f *fakeChannel) ID() string { return f.id }

func (f *fakeChannel) Send(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || f.closed {
		return ErrTransport
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeChannel) received() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...)
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
