package scoring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "ctfbot/pkg/domain"
	txcontext "ctfbot/pkg/platform/tx"
)

// PostgresScoreStore persists solves and score_deltas. ApplySolve relies on
// the solves primary key plus ON CONFLICT DO NOTHING for the linearizable
// check-and-set, a per-challenge advisory lock to order concurrent teams,
// and reads the solve count inside the same transaction so the decay value
// is decided at the commit point.
type PostgresScoreStore struct {
	db *sql.DB
}

func NewPostgresScoreStore(db *sql.DB) *PostgresScoreStore {
	return &PostgresScoreStore{db: db}
}

func (s *PostgresScoreStore) ApplySolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, at time.Time, award func(solveCount int) int) (*ScoreDelta, bool, error) {
	run := func(ctx context.Context, tx *sql.Tx) (*ScoreDelta, bool, error) {
		// The in-process pair lock only serializes one team's retries; two
		// teams solving the same challenge run concurrent transactions, and
		// under READ COMMITTED both would count the same solve rank. The
		// xact-scoped advisory lock serializes the insert-and-count per
		// challenge and releases on commit or rollback.
		if _, err := tx.ExecContext(ctx, `
			SELECT pg_advisory_xact_lock(hashtext($1))
		`, challengeID.String()); err != nil {
			return nil, false, fmt.Errorf("lock challenge for solve: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO solves (team_id, challenge_id, solved_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (team_id, challenge_id) DO NOTHING
		`, uuid.UUID(teamID), uuid.UUID(challengeID), at)
		if err != nil {
			return nil, false, fmt.Errorf("insert solve: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return nil, false, fmt.Errorf("insert solve rows affected: %w", err)
		}
		if inserted == 0 {
			return nil, false, nil
		}

		var solveCount int
		err = tx.QueryRowContext(ctx, `
			SELECT count(*) FROM solves WHERE challenge_id = $1
		`, uuid.UUID(challengeID)).Scan(&solveCount)
		if err != nil {
			return nil, false, fmt.Errorf("count solves: %w", err)
		}

		delta := &ScoreDelta{
			TeamID:      teamID,
			ChallengeID: challengeID,
			Points:      award(solveCount),
			AwardedAt:   at,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO score_deltas (team_id, challenge_id, points, awarded_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.UUID(delta.TeamID), uuid.UUID(delta.ChallengeID), delta.Points, delta.AwardedAt)
		if err != nil {
			return nil, false, fmt.Errorf("insert score delta: %w", err)
		}
		return delta, true, nil
	}

	// Join the caller's transaction when one is on the context; the engine
	// commits the solve, the delta, and the announcement together.
	if tx, ok := txcontext.From(ctx); ok {
		return run(ctx, tx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin solve tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	delta, created, err := run(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit solve tx: %w", err)
	}
	return delta, created, nil
}

func (s *PostgresScoreStore) Solved(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) (bool, error) {
	var exists bool
	err := s.queryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM solves WHERE team_id = $1 AND challenge_id = $2)
	`, uuid.UUID(teamID), uuid.UUID(challengeID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query solve: %w", err)
	}
	return exists, nil
}

func (s *PostgresScoreStore) ListDeltas(ctx context.Context) ([]*ScoreDelta, error) {
	return s.listDeltas(ctx, `
		SELECT team_id, challenge_id, points, awarded_at
		FROM score_deltas
		ORDER BY awarded_at, team_id
	`)
}

func (s *PostgresScoreStore) ListDeltasByTeam(ctx context.Context, teamID id.TeamID) ([]*ScoreDelta, error) {
	return s.listDeltas(ctx, `
		SELECT team_id, challenge_id, points, awarded_at
		FROM score_deltas
		WHERE team_id = $1
		ORDER BY awarded_at
	`, uuid.UUID(teamID))
}

func (s *PostgresScoreStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if tx, ok := txcontext.From(ctx); ok {
		return tx.QueryRowContext(ctx, query, args...)
	}
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *PostgresScoreStore) listDeltas(ctx context.Context, query string, args ...any) ([]*ScoreDelta, error) {
	var rows *sql.Rows
	var err error
	if tx, ok := txcontext.From(ctx); ok {
		rows, err = tx.QueryContext(ctx, query, args...)
	} else {
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("query score deltas: %w", err)
	}
	defer rows.Close()

	var out []*ScoreDelta
	for rows.Next() {
		var (
			d        ScoreDelta
			tid, cid uuid.UUID
		)
		if err := rows.Scan(&tid, &cid, &d.Points, &d.AwardedAt); err != nil {
			return nil, fmt.Errorf("scan score delta: %w", err)
		}
		d.TeamID = id.TeamID(tid)
		d.ChallengeID = id.ChallengeID(cid)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score deltas: %w", err)
	}
	return out, nil
}
