package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innut/innut/pkg/response"
)

// Pinger checks a dependency.
type Pinger func(ctx context.Context) error

// PresenceCounter reports live channels and users.
type PresenceCounter interface {
	Stats() (channels, users int)
}

// Health returns a status payload useful for readiness checks. A failing
// database check turns the response into 503.
func Health(db Pinger, presence PresenceCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{"status": "ok"}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(requestContext(c), 2*time.Second)
			defer cancel()
			if err := db(ctx); err != nil {
				payload["status"] = "degraded"
				payload["database"] = "unreachable"
				status = http.StatusServiceUnavailable
			} else {
				payload["database"] = "ok"
			}
		}

		if presence != nil {
			channels, users := presence.Stats()
			payload["realtime"] = gin.H{"channels": channels, "users": users}
		}

		response.Success(c, status, payload)
	}
}
