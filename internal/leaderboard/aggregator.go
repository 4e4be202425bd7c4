// Package leaderboard derives ranked standings from score deltas. The ranked
// view is a rebuildable projection: it owns no primary state and can always
// be recomputed by replaying the ledger's deltas.
package leaderboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ctfbot/internal/leaderboard/metrics"
	"ctfbot/internal/scoring"
	"ctfbot/internal/team"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

// Entry is one ranked row of the standings.
type Entry struct {
	TeamID      id.TeamID `json:"team_id"`
	TeamName    string    `json:"team_name"`
	Score       int       `json:"score"`
	Rank        int       `json:"rank"`
	LastSolveAt time.Time `json:"last_solve_at"`
}

type teamTotals struct {
	score int
	// reachedAt is when the team reached its current score: the award time of
	// its latest delta. Ties rank the earlier reachedAt first.
	reachedAt time.Time
}

// Cache shares standings snapshots across processes. Implemented by
// SnapshotCache; a Get miss is (nil, nil).
type Cache interface {
	Set(ctx context.Context, entries []*Entry) error
	Get(ctx context.Context) ([]*Entry, error)
}

// Aggregator maintains the incremental projection. ApplyDelta is O(1) under
// a write lock; Standings takes only a read lock, so queries never block
// writers behind a full recompute.
type Aggregator struct {
	mu     sync.RWMutex
	totals map[id.TeamID]*teamTotals

	deltas  scoring.ScoreStore
	teams   team.Store
	cache   Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
	rebuild singleflight.Group
}

type Option func(*Aggregator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

func WithSnapshotCache(cache Cache) Option {
	return func(a *Aggregator) {
		a.cache = cache
	}
}

func New(deltas scoring.ScoreStore, teams team.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		totals: make(map[id.TeamID]*teamTotals),
		deltas: deltas,
		teams:  teams,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ApplyDelta folds one committed delta into the projection.
func (a *Aggregator) ApplyDelta(d scoring.ScoreDelta) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applyLocked(d)
}

func (a *Aggregator) applyLocked(d scoring.ScoreDelta) {
	t, ok := a.totals[d.TeamID]
	if !ok {
		t = &teamTotals{}
		a.totals[d.TeamID] = t
	}
	t.score += d.Points
	if d.AwardedAt.After(t.reachedAt) {
		t.reachedAt = d.AwardedAt
	}
}

// Standings returns the ranked snapshot: score descending, then earlier
// attainment first. The snapshot reflects every delta applied before the
// call; deltas committing mid-query appear next call.
func (a *Aggregator) Standings(ctx context.Context, limit int) ([]*Entry, error) {
	a.mu.RLock()
	entries := make([]*Entry, 0, len(a.totals))
	for teamID, t := range a.totals {
		entries = append(entries, &Entry{
			TeamID:      teamID,
			Score:       t.score,
			LastSolveAt: t.reachedAt,
		})
	}
	a.mu.RUnlock()

	// An empty projection usually means a cold process that has not rebuilt
	// yet; another instance's snapshot is better than an empty board, and
	// its TTL bounds the staleness.
	if len(entries) == 0 && a.cache != nil {
		cached, err := a.cache.Get(ctx)
		if err != nil {
			a.logger.Warn("leaderboard cache read failed", "error", err)
		} else if len(cached) > 0 {
			if limit > 0 && len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].LastSolveAt.Equal(entries[j].LastSolveAt) {
			return entries[i].LastSolveAt.Before(entries[j].LastSolveAt)
		}
		return entries[i].TeamID.String() < entries[j].TeamID.String()
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i, e := range entries {
		e.Rank = i + 1
	}

	if err := a.fillNames(ctx, entries); err != nil {
		return nil, err
	}
	if a.cache != nil {
		// Best effort: a failed cache write never fails the query.
		if err := a.cache.Set(ctx, entries); err != nil {
			a.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}
	return entries, nil
}

func (a *Aggregator) fillNames(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	teams, err := a.teams.List(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve team names")
	}
	names := make(map[id.TeamID]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	for _, e := range entries {
		e.TeamName = names[e.TeamID]
	}
	return nil
}

// Rebuild replays every ScoreDelta from the store, replacing the projection.
// Concurrent callers share one rebuild via singleflight.
func (a *Aggregator) Rebuild(ctx context.Context) error {
	_, err, _ := a.rebuild.Do("rebuild", func() (any, error) {
		deltas, err := a.deltas.ListDeltas(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to replay score deltas")
		}

		fresh := make(map[id.TeamID]*teamTotals)
		a.mu.Lock()
		old := a.totals
		a.totals = fresh
		for _, d := range deltas {
			a.applyLocked(*d)
		}
		a.mu.Unlock()

		if a.metrics != nil {
			a.metrics.Rebuilds.Inc()
		}
		a.logger.Info("leaderboard rebuilt", "deltas", len(deltas), "teams_before", len(old))
		return nil, nil
	})
	return err
}

// CheckConsistency recomputes totals from the delta store and compares them
// with the cached projection. Divergence triggers a rebuild and surfaces a
// coded error so it is never silently ignored.
func (a *Aggregator) CheckConsistency(ctx context.Context) error {
	deltas, err := a.deltas.ListDeltas(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to recompute scores")
	}
	recomputed := make(map[id.TeamID]int)
	for _, d := range deltas {
		recomputed[d.TeamID] += d.Points
	}

	a.mu.RLock()
	diverged := len(recomputed) != len(a.totals)
	if !diverged {
		for teamID, score := range recomputed {
			t, ok := a.totals[teamID]
			if !ok || t.score != score {
				diverged = true
				break
			}
		}
	}
	a.mu.RUnlock()

	if !diverged {
		return nil
	}

	if a.metrics != nil {
		a.metrics.Inconsistencies.Inc()
	}
	a.logger.Error("leaderboard diverged from ledger, rebuilding")
	if err := a.Rebuild(ctx); err != nil {
		return err
	}
	return dErrors.New(dErrors.CodeInconsistent, "leaderboard diverged from ledger; rebuilt")
}
