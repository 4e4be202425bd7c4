package assignment

import (
	"context"

	id "ctfbot/pkg/domain"
)

// Store persists claims. Create returns sentinel.ErrConflict when the member
// already claimed the challenge; Delete returns sentinel.ErrNotFound when
// there is nothing to release.
type Store interface {
	Create(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) error
	ListByTeam(ctx context.Context, teamID id.TeamID) ([]*Assignment, error)
	ListByChallenge(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) ([]*Assignment, error)
}
