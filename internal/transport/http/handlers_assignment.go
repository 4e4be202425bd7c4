package httptransport

import (
	"net/http"
	"time"

	"ctfbot/internal/assignment"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/httputil"
	"ctfbot/pkg/requestcontext"
)

type claimRequest struct {
	ChallengeID string `json:"challenge_id"`
	Member      string `json:"member"`
}

type assignmentView struct {
	ChallengeID string    `json:"challenge_id"`
	Member      string    `json:"member"`
	ClaimedAt   time.Time `json:"claimed_at"`
}

func newAssignmentView(a *assignment.Assignment) assignmentView {
	return assignmentView{
		ChallengeID: a.ChallengeID.String(),
		Member:      a.Member,
		ClaimedAt:   a.ClaimedAt,
	}
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := requestcontext.TeamID(ctx)
	if teamID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, err := httputil.Decode[claimRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	challengeID, err := id.ParseChallengeID(req.ChallengeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	a, err := h.assignments.Claim(ctx, teamID, challengeID, req.Member)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newAssignmentView(a))
}

func (h *Handler) handleUnclaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := requestcontext.TeamID(ctx)
	if teamID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, err := httputil.Decode[claimRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	challengeID, err := id.ParseChallengeID(req.ChallengeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.assignments.Unclaim(ctx, teamID, challengeID, req.Member); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListAssignments lists the team's claims, optionally narrowed to one
// challenge via the challenge_id query param.
func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := requestcontext.TeamID(ctx)
	if teamID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var (
		claims []*assignment.Assignment
		err    error
	)
	if raw := r.URL.Query().Get("challenge_id"); raw != "" {
		challengeID, parseErr := id.ParseChallengeID(raw)
		if parseErr != nil {
			httputil.WriteError(w, parseErr)
			return
		}
		claims, err = h.assignments.ListByChallenge(ctx, teamID, challengeID)
	} else {
		claims, err = h.assignments.ListByTeam(ctx, teamID)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list claims",
			"request_id", requestcontext.RequestID(ctx),
			"team_id", teamID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]assignmentView, 0, len(claims))
	for _, a := range claims {
		out = append(out, newAssignmentView(a))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"assignments": out})
}
