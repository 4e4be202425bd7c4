package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "ctfbot/pkg/domain"
	txcontext "ctfbot/pkg/platform/tx"
)

// PostgresStore persists the ledger in the submissions table. The sequence
// number comes from the table's BIGSERIAL, so ordering is assigned at commit.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, rec *SubmissionRecord) error {
	query := `
		INSERT INTO submissions (team_id, challenge_id, flag_hash, outcome, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`
	err := s.querier(ctx).QueryRowContext(ctx, query,
		uuid.UUID(rec.TeamID),
		uuid.UUID(rec.ChallengeID),
		rec.FlagHash,
		string(rec.Outcome),
		rec.SubmittedAt,
	).Scan(&rec.Seq)
	if err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTeam(ctx context.Context, teamID id.TeamID) ([]*SubmissionRecord, error) {
	query := `
		SELECT seq, team_id, challenge_id, flag_hash, outcome, submitted_at
		FROM submissions
		WHERE team_id = $1
		ORDER BY seq
	`
	return s.list(ctx, query, uuid.UUID(teamID))
}

func (s *PostgresStore) ListByChallenge(ctx context.Context, challengeID id.ChallengeID) ([]*SubmissionRecord, error) {
	query := `
		SELECT seq, team_id, challenge_id, flag_hash, outcome, submitted_at
		FROM submissions
		WHERE challenge_id = $1
		ORDER BY seq
	`
	return s.list(ctx, query, uuid.UUID(challengeID))
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]*SubmissionRecord, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []*SubmissionRecord
	for rows.Next() {
		var (
			rec      SubmissionRecord
			tid, cid uuid.UUID
			outcome  string
		)
		if err := rows.Scan(&rec.Seq, &tid, &cid, &rec.FlagHash, &outcome, &rec.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		rec.TeamID = id.TeamID(tid)
		rec.ChallengeID = id.ChallengeID(cid)
		rec.Outcome = id.SubmissionOutcome(outcome)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}
