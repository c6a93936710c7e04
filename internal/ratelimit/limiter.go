// Package ratelimit bounds request volume per client over fixed windows.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultRequestsPerWindow = 100
	DefaultWindow            = time.Minute
	DefaultMaxTrackedClients = 10000
)

// Config controls bucket capacity and the per-window ceiling.
type Config struct {
	MaxTrackedClients int
	Window            time.Duration
	RequestsPerWindow int
}

func (c Config) withDefaults() Config {
	if c.MaxTrackedClients <= 0 {
		c.MaxTrackedClients = DefaultMaxTrackedClients
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.RequestsPerWindow <= 0 {
		c.RequestsPerWindow = DefaultRequestsPerWindow
	}
	return c
}

// Result describes a single limiter decision.
type Result struct {
	Allowed   bool
	Count     int64
	Limit     int64
	Remaining int64
	ResetIn   time.Duration
}

func newResult(count, limit int64, resetIn time.Duration) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	if resetIn < 0 {
		resetIn = 0
	}
	return Result{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}

// Limiter records one request for token and reports whether it may proceed.
type Limiter interface {
	Allow(ctx context.Context, token string) (Result, error)
}

// ErrEmptyToken is returned when the caller could not be identified.
var ErrEmptyToken = errors.New("ratelimit: empty client token")
