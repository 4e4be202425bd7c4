package challenge

import (
	"context"

	id "ctfbot/pkg/domain"
)

// Store is the challenge registry. Implementations return
// sentinel.ErrNotFound for missing challenges and sentinel.ErrConflict when a
// (name, category) pair is already loaded.
type Store interface {
	Create(ctx context.Context, c *Challenge) error
	FindByID(ctx context.Context, challengeID id.ChallengeID) (*Challenge, error)
	List(ctx context.Context) ([]*Challenge, error)
}
