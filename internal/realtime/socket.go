package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB

	defaultSendBuffer = 64
)

// Socket is a websocket backed Channel. Messages are queued on a bounded
// buffer drained by a single writer, so each socket sees events in the order
// they were sent.
type Socket struct {
	id     string
	userID string
	conn   *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan Message
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newSocket(conn *websocket.Conn, userID string, buffer int) *Socket {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Socket{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan Message, buffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// ID implements Channel.
func (s *Socket) ID() string { return s.id }

// Send queues msg without blocking.
func (s *Socket) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrTransport
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return ErrTransport
	}
}

// Close tears the connection down without waiting for the writer, so a
// stalled client never blocks the caller. Safe to call more than once.
func (s *Socket) Close() error {
	return s.stop(false)
}

// Shutdown drains queued messages and sends a close frame, waiting at most
// writeWait for the writer before closing the connection.
func (s *Socket) Shutdown() error {
	return s.stop(true)
}

func (s *Socket) stop(graceful bool) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		if graceful {
			close(s.send)
		} else {
			close(s.quit)
		}
		s.mu.Unlock()

		if graceful {
			select {
			case <-s.done:
			case <-time.After(writeWait):
			}
		}
		err = s.conn.Close()
	})
	return err
}

func (s *Socket) writeLoop() {
	defer close(s.done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(message); err != nil {
				s.markClosed()
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.markClosed()
				_ = s.conn.Close()
				return
			}
		}
	}
}

// markClosed makes later Sends fail fast once the writer is gone.
func (s *Socket) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
