package scoring

import (
	"time"

	id "ctfbot/pkg/domain"
)

// SolveEvent is the derived fact that a team solved a challenge. At most one
// exists per (team, challenge) pair, ever — the conditional insert in the
// score store is what enforces it.
type SolveEvent struct {
	TeamID      id.TeamID
	ChallengeID id.ChallengeID
	SolvedAt    time.Time
}

// ScoreDelta is the points awarded for one solve. Exactly one per SolveEvent,
// committed in the same transaction. A team's total is the sum of its deltas;
// any cached total is a projection of these rows.
type ScoreDelta struct {
	TeamID      id.TeamID
	ChallengeID id.ChallengeID
	Points      int
	AwardedAt   time.Time
}

// Result is what the engine reports back for an evaluated submission.
type Result struct {
	Outcome id.SubmissionOutcome
	// Points is non-zero only for OutcomeCorrectFirst.
	Points int
	// SolveRank is the 1-based position among solvers of the challenge;
	// 1 means first blood. Zero unless OutcomeCorrectFirst.
	SolveRank int
}
