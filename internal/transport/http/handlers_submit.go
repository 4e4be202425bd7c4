package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"ctfbot/internal/ledger"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/httputil"
	"ctfbot/pkg/requestcontext"
)

type submitRequest struct {
	ChallengeID string `json:"challenge_id"`
	Flag        string `json:"flag"`
}

type rateLimitView struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type submitResponse struct {
	Outcome   string         `json:"outcome"`
	Points    int            `json:"points,omitempty"`
	RateLimit *rateLimitView `json:"rate_limit,omitempty"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := requestcontext.TeamID(ctx)
	if teamID.IsNil() {
		h.logger.ErrorContext(ctx, "team id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	req, err := httputil.Decode[submitRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	challengeID, err := id.ParseChallengeID(req.ChallengeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.submitter.Submit(ctx, teamID, challengeID, req.Flag)
	if err != nil {
		h.logger.ErrorContext(ctx, "submission failed",
			"request_id", requestcontext.RequestID(ctx),
			"team_id", teamID.String(),
			"challenge_id", challengeID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	body := submitResponse{Outcome: string(resp.Outcome), Points: resp.Points}
	status := http.StatusOK
	switch resp.Outcome {
	case id.OutcomeRateLimited:
		status = http.StatusTooManyRequests
		if resp.RateLimit != nil {
			body.RateLimit = &rateLimitView{
				Limit:     resp.RateLimit.Limit,
				Remaining: resp.RateLimit.Remaining,
				ResetAt:   resp.RateLimit.ResetAt,
			}
			retryAfter := int(time.Until(resp.RateLimit.ResetAt).Seconds()) + 1
			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
		}
	case id.OutcomeUnknownTeam, id.OutcomeUnknownChallenge:
		status = http.StatusNotFound
	}
	httputil.WriteJSON(w, status, body)
}

type submissionView struct {
	Seq         int64     `json:"seq"`
	ChallengeID string    `json:"challenge_id"`
	Outcome     string    `json:"outcome"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// handleListSubmissions returns the authenticated team's own attempt history.
// Flag hashes stay server-side.
func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	teamID := requestcontext.TeamID(ctx)
	if teamID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	records, err := h.history.ListByTeam(ctx, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list submissions",
			"request_id", requestcontext.RequestID(ctx),
			"team_id", teamID.String(),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list submissions"))
		return
	}

	out := make([]submissionView, 0, len(records))
	for _, rec := range records {
		out = append(out, newSubmissionView(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func newSubmissionView(rec *ledger.SubmissionRecord) submissionView {
	return submissionView{
		Seq:         rec.Seq,
		ChallengeID: rec.ChallengeID.String(),
		Outcome:     string(rec.Outcome),
		SubmittedAt: rec.SubmittedAt,
	}
}
