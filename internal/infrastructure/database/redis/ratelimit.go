package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// incrExpireScript atomically increments the window counter and sets its
// expiry on first increment.  Returns the new count.
var incrExpireScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Limiter is a fixed-window request rate limiter backed by Redis, shared
// across all instances of the service.
type Limiter struct {
	client *Client
	logger *zap.Logger
	prefix string
	limit  int
	window time.Duration
}

// NewLimiter builds a limiter allowing limit requests per window per key.
func NewLimiter(client *Client, logger *zap.Logger, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
		prefix: "notice:ratelimit:",
		limit:  limit,
		window: window,
	}
}

// Limit returns the configured per-window request budget.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Allow records one request for key (typically a client IP) and reports
// whether it is within budget, along with the remaining budget for the
// current window.
//
// On Redis failure the limiter fails open: the request is allowed and the
// error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, error) {
	count, err := incrExpireScript.Run(ctx, l.client.Redis(),
		[]string{l.prefix + key}, l.window.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			zap.String("key", key), zap.Error(err))
		return true, l.limit, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit check failed")
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}

// Reset clears the current window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Redis().Del(ctx, l.prefix+key).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to reset rate limit window")
	}
	return nil
}
