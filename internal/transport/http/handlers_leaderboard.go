package httptransport

import (
	"net/http"
	"strconv"

	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/httputil"
	"ctfbot/pkg/requestcontext"
)

const defaultStandingsLimit = 50

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultStandingsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.standings.Standings(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build standings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to build standings"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"standings": entries})
}

// handleLeaderboardCheck verifies the projection against the delta history,
// rebuilding it when they diverge.
func (h *Handler) handleLeaderboardCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.standings.CheckConsistency(ctx); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInconsistent) {
			h.logger.WarnContext(ctx, "standings projection diverged and was rebuilt",
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"result": "rebuilt"})
			return
		}
		h.logger.ErrorContext(ctx, "consistency check failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "consistency check failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"result": "consistent"})
}
