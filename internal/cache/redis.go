package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/innut/innut/pkg/logger"
)

const (
	defaultRedisTimeout = 5 * time.Second
	redisKeyPrefix      = "innut:"
)

// RedisConfig captures the connection parameters for the shared Redis cache.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration

	// ConnectAttempts bounds the start-up ping retries. Zero means one attempt.
	ConnectAttempts uint
}

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Incr(context.Context, string) *redis.IntCmd
	PExpire(context.Context, string, time.Duration) *redis.BoolCmd
	PTTL(context.Context, string) *redis.DurationCmd
}

// RedisClient implements Store on top of go-redis.
type RedisClient struct {
	store cmdable
	raw   *redis.Client
}

// NewRedisClient creates the client and verifies connectivity so that
// misconfiguration is surfaced during application startup.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*RedisClient, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
	if cfg.TLS {
		opts.TLSConfig = tlsConfig(cfg.Address)
	}

	raw := redis.NewClient(opts)
	log := logger.WithModule("cache")

	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
			return raw.Ping(pingCtx).Err()
		},
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.MaxJitter(250*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("redis ping failed, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Address, err)
	}

	return &RedisClient{store: raw, raw: raw}, nil
}

func newRedisClientWith(store cmdable) *RedisClient {
	return &RedisClient{store: store}
}

// Close releases the connection pool.
func (c *RedisClient) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// Ping verifies the server is reachable.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// IncrementWithTTL increments the key and sets the expiry on the first hit
// only, so the window stays anchored to its first request.
func (c *RedisClient) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	prefixed := redisKeyPrefix + key

	count, err := c.store.Incr(ctx, prefixed).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := c.store.PExpire(ctx, prefixed, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttl, err := c.store.PTTL(ctx, prefixed).Result()
	if err != nil || ttl < 0 {
		// A key without expiry would never reset; repair it.
		if ttl == -1 {
			_ = c.store.PExpire(ctx, prefixed, window).Err()
		}
		return count, window, nil
	}
	return count, ttl, nil
}
