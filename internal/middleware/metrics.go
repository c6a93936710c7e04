package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innut/innut/pkg/metrics"
)

// unmatchedRoute labels requests that hit no registered route so scanners
// cannot mint a series per URL.
const unmatchedRoute = "unmatched"

// Metrics records request latency by route pattern. Websocket requests live
// as long as the channel and are tracked by the realtime gauges instead.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isWebsocketUpgrade(c.Request) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.APILatency.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
