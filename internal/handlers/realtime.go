package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/innut/innut/internal/auth"
	"github.com/innut/innut/internal/middleware"
	"github.com/innut/innut/internal/realtime"
	"github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/response"
)

// RealtimeHandler upgrades HTTP connections into authenticated notification channels.
type RealtimeHandler struct {
	server *realtime.Server
	jwt    *iauth.JWTService
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(server *realtime.Server, jwt *iauth.JWTService) *RealtimeHandler {
	return &RealtimeHandler{server: server, jwt: jwt}
}

// Stream validates the caller and hands the connection to the channel server.
// Browsers cannot set headers on websocket requests, so the token may also
// travel in the query string.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.jwt == nil || h.server == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token, _ = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	h.server.Serve(userID, c.Writer, c.Request)
}
