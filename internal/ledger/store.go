package ledger

import (
	"context"

	id "ctfbot/pkg/domain"
)

// Store is the append-only submission ledger. Append assigns the record's
// always-increasing sequence number and must be durable before the gateway
// acknowledges the submission. There is deliberately no update or delete.
type Store interface {
	Append(ctx context.Context, rec *SubmissionRecord) error
	ListByTeam(ctx context.Context, teamID id.TeamID) ([]*SubmissionRecord, error)
	ListByChallenge(ctx context.Context, challengeID id.ChallengeID) ([]*SubmissionRecord, error)
}
