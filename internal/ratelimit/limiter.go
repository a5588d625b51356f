package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of consuming one unit against a key.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// Limiter consumes one unit of quota for a key and reports the decision.
// Implementations must be safe for concurrent use across requests.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Config holds the window policy shared by all limiter implementations.
type Config struct {
	Max    int           // accepted units per window
	Window time.Duration // fixed window length
}

// DefaultConfig matches the production policy: 2 submissions per 10 minutes.
func DefaultConfig() Config {
	return Config{Max: 2, Window: 10 * time.Minute}
}

func (c Config) normalized() Config {
	if c.Max <= 0 {
		c.Max = 2
	}
	if c.Window <= 0 {
		c.Window = 10 * time.Minute
	}
	return c
}
