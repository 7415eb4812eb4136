package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resetWindow      = time.Hour
	resetMaxRequests = 3
)

// ResetLimiter throttles forgot-password requests per email address, capping
// how many reset emails one account can trigger within a window.
// Key format: pwreset:<email>
type ResetLimiter struct {
	client *redis.Client
}

// NewResetLimiter creates a ResetLimiter wrapping the given Redis client.
func NewResetLimiter(client *redis.Client) *ResetLimiter {
	return &ResetLimiter{client: client}
}

// Allow counts the request and reports whether it is within the window limit.
func (l *ResetLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := l.key(email)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("reset limiter incr: %w", err)
	}
	if n == 1 {
		// first hit in this window arms the expiry
		if err := l.client.Expire(ctx, key, resetWindow).Err(); err != nil {
			return false, fmt.Errorf("reset limiter expire: %w", err)
		}
	}
	return n <= resetMaxRequests, nil
}

func (l *ResetLimiter) key(email string) string {
	return "pwreset:" + email
}
