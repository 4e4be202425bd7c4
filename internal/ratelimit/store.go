package ratelimit

import (
	"context"
	"time"
)

// BucketStore tracks request counts per key over a sliding window. Keys scope
// state per team, so one team's burst never blocks another's bucket.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
	Reset(ctx context.Context, key string) error
}
