package challenge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/sentinel"
	txcontext "ctfbot/pkg/platform/tx"
)

// PostgresStore persists challenges in the challenges table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, c *Challenge) error {
	query := `
		INSERT INTO challenges (
			id, name, category, points, flag_hash, flag_salt,
			opens_at, closes_at, decay_enabled, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.querier(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.Name,
		c.Category,
		c.Points,
		c.FlagHash,
		c.FlagSalt,
		c.OpensAt,
		c.ClosesAt,
		c.DecayEnabled,
		c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, challengeID id.ChallengeID) (*Challenge, error) {
	query := `
		SELECT id, name, category, points, flag_hash, flag_salt,
		       opens_at, closes_at, decay_enabled, created_at
		FROM challenges
		WHERE id = $1
	`
	row := s.querier(ctx).QueryRowContext(ctx, query, uuid.UUID(challengeID))
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query challenge: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Challenge, error) {
	query := `
		SELECT id, name, category, points, flag_hash, flag_salt,
		       opens_at, closes_at, decay_enabled, created_at
		FROM challenges
		ORDER BY category, name
	`
	rows, err := s.querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	defer rows.Close()

	var out []*Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenges: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*Challenge, error) {
	var (
		c   Challenge
		cid uuid.UUID
	)
	err := row.Scan(
		&cid,
		&c.Name,
		&c.Category,
		&c.Points,
		&c.FlagHash,
		&c.FlagSalt,
		&c.OpensAt,
		&c.ClosesAt,
		&c.DecayEnabled,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = id.ChallengeID(cid)
	return &c, nil
}
