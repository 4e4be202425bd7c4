package scoring

import (
	"context"
	"time"

	id "ctfbot/pkg/domain"
)

// ScoreStore owns the SolveEvent set and the ScoreDelta rows.
//
// ApplySolve is the check-and-set at the heart of the engine: it inserts the
// solve if and only if the (team, challenge) pair has no solve yet, and in
// the same atomic unit reads the post-insert solve count, computes the award
// through the supplied function, and writes the delta. Implementations must
// make the whole of ApplySolve atomic — a database transaction or a store
// lock — so the decay read can never observe a half-applied solve.
//
// Returns (nil, false, nil) when the pair was already solved. Safe to retry:
// a replayed ApplySolve for an applied solve is a no-op duplicate.
type ScoreStore interface {
	ApplySolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, at time.Time, award func(solveCount int) int) (*ScoreDelta, bool, error)

	// Solved reports whether the pair already has a solve.
	Solved(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) (bool, error)

	// ListDeltas returns every delta in award order; the leaderboard rebuild
	// path replays these.
	ListDeltas(ctx context.Context) ([]*ScoreDelta, error)

	ListDeltasByTeam(ctx context.Context, teamID id.TeamID) ([]*ScoreDelta, error)
}
