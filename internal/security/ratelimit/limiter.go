package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/taskmanager/internal/infrastructure/redis"
)

// Limiter throttles login attempts with a fixed window counter kept in
// Redis, so the limit holds across server replicas. When Redis is
// unreachable the limiter fails open.
type Limiter struct {
	client  *redis.Client
	maxReqs int64
	window  time.Duration
	logger  *slog.Logger
}

func NewLimiter(client *redis.Client, maxRequests int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		client:  client,
		maxReqs: int64(maxRequests),
		window:  window,
		logger:  logger,
	}
}

// Allow reports whether another attempt for the key fits the window.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if key == "" || l.client == nil {
		return true
	}

	redisKey := "ratelimit:login:" + key
	count, err := l.client.Incr(ctx, redisKey)
	if err != nil {
		l.logger.Warn("rate limiter unavailable, failing open",
			slog.String("error", err.Error()),
		)
		return true
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window); err != nil {
			l.logger.Warn("failed to set rate limit window",
				slog.String("error", err.Error()),
			)
		}
	}

	return count <= l.maxReqs
}
