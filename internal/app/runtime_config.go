package app

import (
	"github.com/innut/innut/internal/realtime"
	"github.com/innut/innut/internal/services"
)

// ServiceConfig converts the notifications section into service parameters.
func (c NotificationsConfig) ServiceConfig() services.NotificationServiceConfig {
	return services.NotificationServiceConfig{
		DefaultPageSize: c.DefaultPageSize,
		MaxPageSize:     c.MaxPageSize,
	}
}

// ServerConfig converts the realtime section into channel server parameters.
func (c RealtimeConfig) ServerConfig() realtime.ServerConfig {
	return realtime.ServerConfig{
		SendBuffer:          c.SendBuffer,
		PresenceDiagnostics: c.PresenceDiagnostics,
	}
}
