package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisBucketStore implements BucketStore with a sorted-set sliding window,
// shared across bot instances. Each attempt is a member scored by its unix
// nanosecond timestamp; expired members are trimmed before counting.
type RedisBucketStore struct {
	client *redis.Client
}

func NewRedisBucketStore(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

// allowScript trims, counts, and conditionally records in one atomic step, so
// a concurrent burst cannot pass the count before any attempt is recorded.
// KEYS[1] bucket key; ARGV: cutoff ns, limit, now ns, member, window ms.
// Returns {allowed, count after the call}.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	return {0, count}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {1, count + 1}
`)

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	cutoff := now.Add(-window)
	redisKey := "ctfbot:ratelimit:" + key

	// Members get a random suffix so two attempts in the same nanosecond
	// still count twice.
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()

	raw, err := allowScript.Run(ctx, s.client, []string{redisKey},
		cutoff.UnixNano(),
		limit,
		now.UnixNano(),
		member,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("check rate limit window: %w", err)
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("unexpected rate limit script reply: %v", raw)
	}

	allowed := raw[0] == 1
	count := int(raw[1])
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   allowed,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   now.Add(window),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, "ctfbot:ratelimit:"+key).Err(); err != nil {
		return fmt.Errorf("reset rate limit key: %w", err)
	}
	return nil
}
