package gateway

import (
	"context"
	"time"

	"ctfbot/internal/ledger"
	id "ctfbot/pkg/domain"
)

// SolveRecorder adapts the ledger to the engine's in-transaction recording
// hook. The engine calls it inside the solve transaction, so the correct-first
// record commits atomically with the SolveEvent and its ScoreDelta; a crash
// can never leave a scored solve without its audit record.
type SolveRecorder struct {
	ledger Ledger
}

func NewSolveRecorder(ldg Ledger) *SolveRecorder {
	return &SolveRecorder{ledger: ldg}
}

func (r *SolveRecorder) RecordFirstSolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, flagHash string, at time.Time) error {
	return r.ledger.Append(ctx, &ledger.SubmissionRecord{
		TeamID:      teamID,
		ChallengeID: challengeID,
		FlagHash:    flagHash,
		Outcome:     id.OutcomeCorrectFirst,
		SubmittedAt: at,
	})
}
