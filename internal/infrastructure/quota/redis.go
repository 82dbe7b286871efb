package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTracker daily provider budget kept in Redis counters
type RedisTracker struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisTracker connects using a redis:// URL
func NewRedisTracker(redisURL string) (*RedisTracker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisTrackerWithClient(redis.NewClient(opt)), nil
}

// NewRedisTrackerWithClient wraps an existing client
func NewRedisTrackerWithClient(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client, now: time.Now}
}

// Consume counts one call for today and reports whether it fits the limit.
// Keys are quota:<provider>:<YYYY-MM-DD> and expire a day after midnight.
func (r *RedisTracker) Consume(ctx context.Context, provider string, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	now := r.now()
	key := fmt.Sprintf("quota:%s:%s", provider, now.Format("2006-01-02"))
	midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, midnight.Add(24*time.Hour))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to update quota %s: %w", key, err)
	}

	return incr.Val() <= int64(limit), nil
}

// Close closes the Redis connection
func (r *RedisTracker) Close() error {
	return r.client.Close()
}
