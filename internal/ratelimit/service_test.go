package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

type failingBucketStore struct{}

func (failingBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	return nil, errors.New("store down")
}

func (failingBucketStore) Reset(ctx context.Context, key string) error {
	return errors.New("store down")
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServiceCheckTeam(t *testing.T) {
	t.Run("consumes attempts until the limit", func(t *testing.T) {
		svc := New(NewInMemoryBucketStore(), 3, time.Minute, WithLogger(silentLogger()))
		teamID := id.TeamID(uuid.New())

		for i := range 3 {
			result, err := svc.CheckTeam(context.Background(), teamID)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "attempt %d should be allowed", i+1)
		}
		result, err := svc.CheckTeam(context.Background(), teamID)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
	})

	t.Run("rejects nil team id", func(t *testing.T) {
		svc := New(NewInMemoryBucketStore(), 3, time.Minute, WithLogger(silentLogger()))
		_, err := svc.CheckTeam(context.Background(), id.TeamID{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("fails open when the store is unavailable", func(t *testing.T) {
		svc := New(failingBucketStore{}, 3, time.Minute, WithLogger(silentLogger()))
		result, err := svc.CheckTeam(context.Background(), id.TeamID(uuid.New()))
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})
}

func TestServiceReset(t *testing.T) {
	svc := New(NewInMemoryBucketStore(), 1, time.Minute, WithLogger(silentLogger()))
	teamID := id.TeamID(uuid.New())

	_, err := svc.CheckTeam(context.Background(), teamID)
	require.NoError(t, err)
	denied, err := svc.CheckTeam(context.Background(), teamID)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	require.NoError(t, svc.Reset(context.Background(), teamID))

	result, err := svc.CheckTeam(context.Background(), teamID)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
