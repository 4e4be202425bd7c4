package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ctfbot/internal/team"
	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/httputil"
	"ctfbot/pkg/requestcontext"
)

type registerTeamRequest struct {
	Name string `json:"name"`
}

type registerTeamResponse struct {
	TeamID       string    `json:"team_id"`
	Name         string    `json:"name"`
	Token        string    `json:"token"`
	RegisteredAt time.Time `json:"registered_at"`
}

// handleRegisterTeam creates a team and returns its one-time submission
// token. The token is not recoverable later.
func (h *Handler) handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[registerTeamRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.teams.Register(ctx, team.Spec{Name: req.Name})
	if err != nil {
		h.logger.WarnContext(ctx, "team registration rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerTeamResponse{
		TeamID:       reg.Team.ID.String(),
		Name:         reg.Team.Name,
		Token:        reg.Token,
		RegisteredAt: reg.Team.RegisteredAt,
	})
}

func (h *Handler) handleResetRateLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, err := id.ParseTeamID(chi.URLParam(r, "teamID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.limits.Reset(ctx, teamID); err != nil {
		h.logger.ErrorContext(ctx, "failed to reset rate limit",
			"request_id", requestcontext.RequestID(ctx),
			"team_id", teamID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "rate limit reset",
		"request_id", requestcontext.RequestID(ctx),
		"team_id", teamID.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}
