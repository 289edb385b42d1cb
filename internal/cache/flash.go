package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/model"
)

const (
	// flashPrefix is the Redis key prefix for queued flash messages.
	flashPrefix = "flash:"
	// flashTTL bounds how long an unread message survives.
	flashTTL = 10 * time.Minute
)

// flashKey derives the list key from the session token so raw tokens never
// appear in Redis.
func flashKey(token string) string {
	return flashPrefix + auth.QuickHash(token)
}

// PushFlash queues a message for the visitor holding token.
func (c *Cache) PushFlash(ctx context.Context, token string, f model.Flash) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}

	key := flashKey(token)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, flashTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push flash: %w", err)
	}

	return nil
}

// PopFlashes returns and clears every queued message for token, oldest
// first. Read and delete happen in one MULTI so a message is shown once.
func (c *Cache) PopFlashes(ctx context.Context, token string) ([]model.Flash, error) {
	key := flashKey(token)

	var lrange *redis.StringSliceCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pop flashes: %w", err)
	}

	raw := lrange.Val()
	flashes := make([]model.Flash, 0, len(raw))
	for _, item := range raw {
		var f model.Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			// Corrupted entry - drop it
			continue
		}
		flashes = append(flashes, f)
	}

	return flashes, nil
}
