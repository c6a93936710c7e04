package realtime

import "errors"

// Server to client events.
const (
	EventJoined              = "joined"
	EventNotification        = "notification"
	EventNotificationRead    = "notification.read"
	EventNotificationReadAll = "notification.read_all"
	EventPong                = "pong"
	EventError               = "error"
	EventPresence            = "presence"
)

// Client to server events.
const (
	EventJoin = "join"
	EventPing = "ping"
)

// ErrTransport reports that a channel can no longer accept events.
var ErrTransport = errors.New("realtime: transport error")

// Message is a JSON frame pushed to a channel.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ErrorPayload is the data of an error frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PresencePayload is broadcast when the number of live channels changes.
type PresencePayload struct {
	Channels int `json:"channels"`
	Users    int `json:"users"`
}

type clientFrame struct {
	Event  string `json:"event"`
	UserID string `json:"user_id"`
}
