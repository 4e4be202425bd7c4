package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "ctfbot:leaderboard:snapshot"

// SnapshotCache stores a serialized standings snapshot in redis so other
// processes (or a read replica of the bot) can serve leaderboard queries
// without holding the projection. The TTL is the documented staleness bound.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Set writes the snapshot with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, entries []*Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("store leaderboard snapshot: %w", err)
	}
	return nil
}

// Get returns the cached snapshot, or (nil, nil) when absent or expired.
func (c *SnapshotCache) Get(ctx context.Context) ([]*Entry, error) {
	payload, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard snapshot: %w", err)
	}
	var entries []*Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard snapshot: %w", err)
	}
	return entries, nil
}
