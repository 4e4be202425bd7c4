package team

import (
	"context"

	id "ctfbot/pkg/domain"
)

// Store is the team registry. Implementations return sentinel.ErrNotFound for
// missing teams and sentinel.ErrConflict for duplicate names.
type Store interface {
	Create(ctx context.Context, t *Team) error
	FindByID(ctx context.Context, teamID id.TeamID) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
}
