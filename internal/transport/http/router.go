// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; business rules stay out of this package.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ctfbot/internal/assignment"
	"ctfbot/internal/challenge"
	"ctfbot/internal/event"
	"ctfbot/internal/gateway"
	"ctfbot/internal/leaderboard"
	"ctfbot/internal/ledger"
	"ctfbot/internal/team"
	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/httputil"
)

// Service ports. Narrow interfaces so handler tests run against mocks.
type (
	Submitter interface {
		Submit(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, candidateFlag string) (*gateway.Response, error)
	}

	TeamService interface {
		Register(ctx context.Context, spec team.Spec) (*team.Registration, error)
		Get(ctx context.Context, teamID id.TeamID) (*team.Team, error)
	}

	ChallengeService interface {
		Load(ctx context.Context, spec challenge.Spec) (*challenge.Challenge, error)
		List(ctx context.Context) ([]*challenge.Challenge, error)
		Import(ctx context.Context, doc []byte, opensAt, closesAt time.Time) (*challenge.ImportResult, error)
	}

	EventService interface {
		Create(ctx context.Context, spec event.Spec) (*event.Event, error)
		ChangeTime(ctx context.Context, eventID id.EventID, startsAt, endsAt time.Time) (*event.Event, error)
		ChangeURL(ctx context.Context, eventID id.EventID, url string) (*event.Event, error)
		ChangeMode(ctx context.Context, eventID id.EventID, teamMode bool) (*event.Event, error)
		SetCredentials(ctx context.Context, eventID id.EventID, username, password string) (*event.Event, error)
		GetInfo(ctx context.Context, eventID id.EventID) (*event.Info, error)
		List(ctx context.Context) ([]*event.Event, error)
	}

	AssignmentService interface {
		Claim(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) (*assignment.Assignment, error)
		Unclaim(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) error
		ListByTeam(ctx context.Context, teamID id.TeamID) ([]*assignment.Assignment, error)
		ListByChallenge(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) ([]*assignment.Assignment, error)
	}

	Standings interface {
		Standings(ctx context.Context, limit int) ([]*leaderboard.Entry, error)
		CheckConsistency(ctx context.Context) error
	}

	SubmissionHistory interface {
		ListByTeam(ctx context.Context, teamID id.TeamID) ([]*ledger.SubmissionRecord, error)
	}

	LimitResetter interface {
		Reset(ctx context.Context, teamID id.TeamID) error
	}
)

// Handler holds the wired services behind the routes.
type Handler struct {
	logger *slog.Logger

	submitter   Submitter
	teams       TeamService
	challenges  ChallengeService
	events      EventService
	assignments AssignmentService
	standings   Standings
	history     SubmissionHistory
	limits      LimitResetter

	healthChecks map[string]func(ctx context.Context) error
}

// Config carries transport-level settings into the router.
type Config struct {
	AdminToken string
}

func NewHandler(
	logger *slog.Logger,
	submitter Submitter,
	teams TeamService,
	challenges ChallengeService,
	events EventService,
	assignments AssignmentService,
	standings Standings,
	history SubmissionHistory,
	limits LimitResetter,
) *Handler {
	return &Handler{
		logger:       logger,
		submitter:    submitter,
		teams:        teams,
		challenges:   challenges,
		events:       events,
		assignments:  assignments,
		standings:    standings,
		history:      history,
		limits:       limits,
		healthChecks: make(map[string]func(ctx context.Context) error),
	}
}

// AddHealthCheck registers a named dependency probe for /healthz.
func (h *Handler) AddHealthCheck(name string, check func(ctx context.Context) error) {
	h.healthChecks[name] = check
}

// NewRouter wires every endpoint with the shared middleware stack.
func NewRouter(h *Handler, auth TeamAuthenticator, cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(Recovery(h.logger))
	r.Use(RequestID)
	r.Use(RequestTime)
	r.Use(ClientIP)

	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/leaderboard", h.handleLeaderboard)
	r.Get("/challenges", h.handleListChallenges)
	r.Get("/events", h.handleListEvents)
	r.Get("/events/{eventID}", h.handleGetEvent)

	r.Group(func(r chi.Router) {
		r.Use(RequireTeam(auth, h.logger))
		r.Post("/submissions", h.handleSubmit)
		r.Get("/submissions", h.handleListSubmissions)
		r.Post("/assignments", h.handleClaim)
		r.Delete("/assignments", h.handleUnclaim)
		r.Get("/assignments", h.handleListAssignments)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdmin(cfg.AdminToken, h.logger))
		r.Post("/teams", h.handleRegisterTeam)
		r.Post("/teams/{teamID}/ratelimit/reset", h.handleResetRateLimit)
		r.Post("/challenges", h.handleCreateChallenge)
		r.Post("/challenges/import", h.handleImportChallenges)
		r.Post("/events", h.handleCreateEvent)
		r.Put("/events/{eventID}/schedule", h.handleChangeEventSchedule)
		r.Put("/events/{eventID}/url", h.handleChangeEventURL)
		r.Put("/events/{eventID}/mode", h.handleChangeEventMode)
		r.Put("/events/{eventID}/credentials", h.handleSetEventCredentials)
		r.Post("/leaderboard/check", h.handleLeaderboardCheck)
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.healthChecks))
	for name, check := range h.healthChecks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = "unhealthy"
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			continue
		}
		checks[name] = "ok"
	}

	httputil.WriteJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": checks,
	})
}
