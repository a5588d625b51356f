package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/myautoimport/site-api/pkg/logging"
)

var tracer = otel.Tracer("github.com/myautoimport/site-api/internal/ratelimit")

// RedisLimiter implements a fixed-window counter on Redis (INCR + EXPIRE).
// Counter consistency under concurrent requests is delegated to Redis.
type RedisLimiter struct {
	redis  *redis.Client
	config Config
	logger *logging.Logger
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, cfg Config, logger *logging.Logger) *RedisLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{
		redis:  client,
		config: cfg.normalized(),
		logger: logger,
	}
}

// Allow consumes one unit for key. On Redis errors it fails open: submissions
// must not be lost because the limiter store is unreachable.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.allow")
	defer span.End()
	span.SetAttributes(attribute.String("ratelimit.key", key))

	count, expiry, err := l.incrementAndGet(ctx, key)
	if err != nil {
		l.logger.Error("rate limit check failed, failing open", "error", err, "key", key)
		return Decision{
			Allowed:   true,
			Limit:     l.config.Max,
			Remaining: l.config.Max,
			ResetAt:   time.Now().Add(l.config.Window),
		}, nil
	}

	remaining := l.config.Max - count
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Allowed:   count <= l.config.Max,
		Limit:     l.config.Max,
		Remaining: remaining,
		ResetAt:   expiry,
	}

	if !decision.Allowed {
		l.logger.Warn("rate limit exceeded",
			"key", key,
			"count", count,
			"max", l.config.Max,
		)
		span.SetAttributes(attribute.Bool("ratelimit.exceeded", true))
	}

	return decision, nil
}

// incrementAndGet increments the window counter and returns the new value
// with the window expiry time.
func (l *RedisLimiter) incrementAndGet(ctx context.Context, key string) (int, time.Time, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ratelimit: incr %s: %w", key, err)
	}

	// Set expiry only on the first increment of the window.
	if count == 1 {
		l.redis.Expire(ctx, key, l.config.Window)
	}

	ttl, err := l.redis.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.config.Window
	}

	return int(count), time.Now().Add(ttl), nil
}

// Reset clears the counter for a key (debug endpoint use).
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, key).Err()
}
