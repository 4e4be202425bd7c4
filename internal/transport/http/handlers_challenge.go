package httptransport

import (
	"io"
	"net/http"
	"time"

	"ctfbot/internal/challenge"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/httputil"
	"ctfbot/pkg/requestcontext"
)

// maxImportBytes bounds the challenge import document.
const maxImportBytes = 1 << 20

type challengeView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Points       int       `json:"points"`
	OpensAt      time.Time `json:"opens_at,omitzero"`
	ClosesAt     time.Time `json:"closes_at,omitzero"`
	DecayEnabled bool      `json:"decay_enabled"`
}

func newChallengeView(c *challenge.Challenge) challengeView {
	return challengeView{
		ID:           c.ID.String(),
		Name:         c.Name,
		Category:     c.Category,
		Points:       c.Points,
		OpensAt:      c.OpensAt,
		ClosesAt:     c.ClosesAt,
		DecayEnabled: c.DecayEnabled,
	}
}

// handleListChallenges serves the public challenge list. Flag hashes and
// salts never leave the service layer.
func (h *Handler) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.challenges.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list challenges",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list challenges"))
		return
	}

	out := make([]challengeView, 0, len(list))
	for _, c := range list {
		out = append(out, newChallengeView(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"challenges": out})
}

type createChallengeRequest struct {
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Points       int       `json:"points"`
	Flag         string    `json:"flag"`
	OpensAt      time.Time `json:"opens_at"`
	ClosesAt     time.Time `json:"closes_at"`
	DecayEnabled bool      `json:"decay_enabled"`
}

func (h *Handler) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[createChallengeRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.challenges.Load(ctx, challenge.Spec{
		Name:         req.Name,
		Category:     req.Category,
		Points:       req.Points,
		Flag:         req.Flag,
		OpensAt:      req.OpensAt,
		ClosesAt:     req.ClosesAt,
		DecayEnabled: req.DecayEnabled,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "challenge load rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, newChallengeView(c))
}

// handleImportChallenges ingests a platform export document. Query params
// opens_at and closes_at (RFC 3339) apply to every imported challenge.
func (h *Handler) handleImportChallenges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opensAt, err := parseTimeParam(r, "opens_at")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	closesAt, err := parseTimeParam(r, "closes_at")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
		return
	}

	result, err := h.challenges.Import(ctx, doc, opensAt, closesAt)
	if err != nil {
		h.logger.WarnContext(ctx, "challenge import rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "challenges imported",
		"request_id", requestcontext.RequestID(ctx),
		"loaded", result.Loaded,
		"skipped", result.Skipped,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]int{
		"loaded":  result.Loaded,
		"skipped": result.Skipped,
	})
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, name+" must be RFC 3339")
	}
	return t, nil
}
