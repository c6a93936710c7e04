package checks

import (
	"context"
	"fmt"

	"github.com/innut/innut/internal/monitoring"
)

// PresenceCounter reports live channels and users.
type PresenceCounter interface {
	Stats() (channels, users int)
}

// Realtime is a liveness probe reporting the presence registry size.
func Realtime(presence PresenceCounter) monitoring.Check {
	return monitoring.Check{
		Name: "realtime",
		Run: func(context.Context) monitoring.ProbeResult {
			if presence == nil {
				return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "presence registry unavailable"}
			}
			channels, users := presence.Stats()
			return monitoring.ProbeResult{
				Status:  monitoring.StatusUp,
				Details: fmt.Sprintf("%d channels, %d users", channels, users),
			}
		},
	}
}
