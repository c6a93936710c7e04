package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/innut/innut/internal/middleware"
	"github.com/innut/innut/internal/services"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// actorFromContext reads the identity placed by middleware.Auth.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.UserID == "" {
		return services.Actor{}, false
	}
	return services.ActorFromClaims(claims), true
}
