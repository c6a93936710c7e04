package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/innut/innut/internal/ratelimit"
	"github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/logger"
	"github.com/innut/innut/pkg/metrics"
	"github.com/innut/innut/pkg/response"
)

// RateLimit consults limiter before every mutating request, keyed by client
// IP. gin resolves forwarded-for headers only from trusted proxies. Limiter
// failures let the request through.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if limiter == nil || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		token := c.ClientIP()
		result, err := limiter.Allow(c.Request.Context(), token)
		if err != nil {
			metrics.RateLimitDecisions.WithLabelValues("error").Inc()
			log.Warn("limiter unavailable, allowing request",
				zap.String("client_ip", token),
				zap.Error(err),
			)
			c.Next()
			return
		}

		resetSeconds := int64(math.Ceil(result.ResetIn.Seconds()))
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetSeconds, 10))

		if !result.Allowed {
			metrics.RateLimitDecisions.WithLabelValues("deny").Inc()
			c.Header("Retry-After", strconv.FormatInt(max(1, resetSeconds), 10))
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}

		metrics.RateLimitDecisions.WithLabelValues("allow").Inc()
		c.Next()
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
