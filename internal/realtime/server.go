package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/innut/innut/pkg/logger"
)

// ServerConfig tunes per-connection behaviour.
type ServerConfig struct {
	SendBuffer          int
	PresenceDiagnostics bool
}

// Server upgrades HTTP requests to websocket channels and speaks the join
// protocol on them.
type Server struct {
	cfg         ServerConfig
	registry    *Registry
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

// NewServer constructs a channel server sharing the broadcaster's registry.
func NewServer(broadcaster *Broadcaster, cfg ServerConfig) *Server {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	return &Server{
		cfg:         cfg,
		registry:    broadcaster.Registry(),
		broadcaster: broadcaster,
		log:         logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// Serve upgrades the connection for the authenticated userID and blocks until
// the client disconnects. The channel is only registered after a join frame.
func (s *Server) Serve(userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	socket := newSocket(conn, userID, s.cfg.SendBuffer)
	go socket.writeLoop()

	s.readLoop(socket)

	wasRegistered := s.registry.Unregister(socket)
	_ = socket.Shutdown()
	if wasRegistered {
		s.announcePresence()
	}
}

func (s *Server) readLoop(socket *Socket) {
	conn := socket.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Debug("unexpected close", zap.String("user_id", socket.userID), zap.Error(err))
			}
			return
		}
		if len(payload) == 0 {
			continue
		}

		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.reply(socket, errorMessage("BAD_REQUEST", "invalid frame"))
			continue
		}

		switch strings.ToLower(strings.TrimSpace(frame.Event)) {
		case EventJoin:
			s.join(socket, strings.TrimSpace(frame.UserID))
		case EventPing:
			s.reply(socket, Message{Event: EventPong})
		default:
			s.reply(socket, errorMessage("BAD_REQUEST", "unsupported event"))
		}
	}
}

func (s *Server) join(socket *Socket, requested string) {
	if requested == "" {
		requested = socket.userID
	}
	if requested != socket.userID {
		s.log.Warn("join refused",
			zap.String("user_id", socket.userID),
			zap.String("requested_user_id", requested),
		)
		s.reply(socket, errorMessage("FORBIDDEN", "cannot join as another user"))
		return
	}

	_, already := s.registry.UserOf(socket)
	s.registry.Register(requested, socket)
	s.reply(socket, Message{Event: EventJoined, Data: map[string]string{"user_id": requested}})
	if !already {
		s.announcePresence()
	}
}

func (s *Server) reply(socket *Socket, msg Message) {
	if err := socket.Send(msg); err != nil {
		s.log.Debug("reply dropped", zap.String("event", msg.Event), zap.Error(err))
	}
}

func (s *Server) announcePresence() {
	if !s.cfg.PresenceDiagnostics {
		return
	}
	channels, users := s.registry.Stats()
	s.broadcaster.BroadcastAll(Message{
		Event: EventPresence,
		Data:  PresencePayload{Channels: channels, Users: users},
	})
}

func errorMessage(code, message string) Message {
	return Message{Event: EventError, Data: ErrorPayload{Code: code, Message: message}}
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
