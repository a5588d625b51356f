package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a process-local fixed-window counter used when no Redis
// store is configured. It is a degraded, single-instance-only mode: counters
// are not shared across replicas, so the effective limit multiplies by the
// instance count.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	config  Config
	done    chan struct{}
	once    sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates an in-process limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		config:  cfg.normalized(),
		done:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow consumes one unit for key.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.config.Window)}
		l.windows[key] = w
	}
	w.count++

	remaining := l.config.Max - w.count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   w.count <= l.config.Max,
		Limit:     l.config.Max,
		Remaining: remaining,
		ResetAt:   w.resetAt,
	}, nil
}

// Close stops the background cleanup goroutine.
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.done) })
}

// cleanup periodically evicts expired windows to prevent memory growth.
func (l *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.resetAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
