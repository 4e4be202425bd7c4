package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/sentinel"
)

// PostgresStore persists claims in the assignments table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Assignment) error {
	query := `
		INSERT INTO assignments (team_id, challenge_id, member, claimed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.TeamID), uuid.UUID(a.ChallengeID), a.Member, a.ClaimedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) error {
	query := `
		DELETE FROM assignments
		WHERE team_id = $1 AND challenge_id = $2 AND member = $3
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(teamID), uuid.UUID(challengeID), member)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assignment rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByTeam(ctx context.Context, teamID id.TeamID) ([]*Assignment, error) {
	query := `
		SELECT team_id, challenge_id, member, claimed_at
		FROM assignments
		WHERE team_id = $1
		ORDER BY claimed_at, member
	`
	return s.list(ctx, query, uuid.UUID(teamID))
}

func (s *PostgresStore) ListByChallenge(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) ([]*Assignment, error) {
	query := `
		SELECT team_id, challenge_id, member, claimed_at
		FROM assignments
		WHERE team_id = $1 AND challenge_id = $2
		ORDER BY claimed_at, member
	`
	return s.list(ctx, query, uuid.UUID(teamID), uuid.UUID(challengeID))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Assignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []*Assignment
	for rows.Next() {
		var (
			a        Assignment
			tid, cid uuid.UUID
		)
		if err := rows.Scan(&tid, &cid, &a.Member, &a.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.TeamID = id.TeamID(tid)
		a.ChallengeID = id.ChallengeID(cid)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}
