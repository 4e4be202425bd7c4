package team

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

// PostgresStore persists teams in the teams table.
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

func (s *PostgresStore) Create(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (id, name, token_hash, registered_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.querier(ctx).ExecContext(ctx, query,
		uuid.UUID(t.ID),
		t.Name,
		t.TokenHash,
		t.RegisteredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, teamID id.TeamID) (*Team, error) {
	query := `
		SELECT id, name, token_hash, registered_at
		FROM teams
		WHERE id = $1
	`
	var (
		t   Team
		tid uuid.UUID
	)
	err := s.querier(ctx).QueryRowContext(ctx, query, uuid.UUID(teamID)).
		Scan(&tid, &t.Name, &t.TokenHash, &t.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query team: %w", err)
	}
	t.ID = id.TeamID(tid)
	return &t, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Team, error) {
	query := `
		SELECT id, name, token_hash, registered_at
		FROM teams
		ORDER BY name
	`
	rows, err := s.querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []*Team
	for rows.Next() {
		var (
			t   Team
			tid uuid.UUID
		)
		if err := rows.Scan(&tid, &t.Name, &t.TokenHash, &t.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.ID = id.TeamID(tid)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return out, nil
}
