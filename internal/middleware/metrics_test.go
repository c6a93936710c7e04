package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// latencySamples returns the observation count of the latency series with
// the given labels.
func latencySamples(t *testing.T, method, route, status string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	want := map[string]string{"method": method, "path": route, "status": status}
	for _, family := range families {
		if family.GetName() != "innut_api_latency_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, label := range metric.GetLabel() {
				if want[label.GetName()] == label.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				return metric.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func newMetricsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/notifications/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestMetricsMiddlewareObservesRoutePattern(t *testing.T) {
	r := newMetricsRouter()
	before := latencySamples(t, http.MethodGet, "/api/notifications/:id", "204")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications/abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	require.Equal(t, before+1, latencySamples(t, http.MethodGet, "/api/notifications/:id", "204"))
}

func TestMetricsMiddlewareCollapsesUnmatchedPaths(t *testing.T) {
	r := newMetricsRouter()
	before := latencySamples(t, http.MethodGet, unmatchedRoute, "404")

	for _, path := range []string{"/wp-login.php", "/.env", "/admin/config"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, before+3, latencySamples(t, http.MethodGet, unmatchedRoute, "404"))
	require.Zero(t, latencySamples(t, http.MethodGet, "/.env", "404"))
}

func TestMetricsMiddlewareSkipsChannels(t *testing.T) {
	r := newMetricsRouter()
	before := latencySamples(t, http.MethodGet, "/ws", "200")

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, before, latencySamples(t, http.MethodGet, "/ws", "200"))
}
