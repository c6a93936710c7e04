package app

import (
	"fmt"
	"strings"

	"github.com/innut/innut/internal/cache"
	"github.com/innut/innut/internal/ratelimit"
)

// RedisClientConfig converts the application cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:         strings.TrimSpace(c.Redis.Address),
		Username:        strings.TrimSpace(c.Redis.Username),
		Password:        c.Redis.Password,
		DB:              c.Redis.DB,
		TLS:             c.Redis.TLS,
		Timeout:         c.Redis.Timeout,
		ConnectAttempts: c.Redis.ConnectAttempts,
	}
}

// LimiterConfig converts the rate limit section into limiter parameters.
func (c RateLimitConfig) LimiterConfig() ratelimit.Config {
	return ratelimit.Config{
		MaxTrackedClients: c.MaxTrackedClients,
		Window:            c.Window,
		RequestsPerWindow: c.RequestsPerWindow,
	}
}

// NewLimiter builds the configured limiter backend. It returns nil when rate
// limiting is disabled. The store backend needs a shared counter store.
func (c RateLimitConfig) NewLimiter(store cache.Store) (ratelimit.Limiter, error) {
	if !c.Enabled {
		return nil, nil
	}

	switch backend := strings.ToLower(strings.TrimSpace(c.Backend)); backend {
	case "", RateLimitBackendMemory:
		return ratelimit.NewMemoryLimiter(c.LimiterConfig())
	case RateLimitBackendStore:
		if store == nil {
			return nil, fmt.Errorf("rate limit: backend %q requires a cache store", backend)
		}
		return ratelimit.NewStoreLimiter(store, c.LimiterConfig())
	default:
		return nil, fmt.Errorf("rate limit: unsupported backend %q", backend)
	}
}
