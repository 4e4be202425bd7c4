package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ctfbot/internal/event"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/httputil"
	"ctfbot/pkg/requestcontext"
)

type createEventRequest struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	TeamMode bool      `json:"team_mode"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[createEventRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.events.Create(ctx, event.Spec{
		Name:     req.Name,
		URL:      req.URL,
		TeamMode: req.TeamMode,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "event creation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	info := e.Info()
	httputil.WriteJSON(w, http.StatusCreated, info)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.events.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list events"))
		return
	}

	out := make([]event.Info, 0, len(list))
	for _, e := range list {
		out = append(out, e.Info())
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	info, err := h.events.GetInfo(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

type changeScheduleRequest struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

func (h *Handler) handleChangeEventSchedule(w http.ResponseWriter, r *http.Request) {
	h.updateEvent(w, r, func(eventID id.EventID) (*event.Event, error) {
		req, err := httputil.Decode[changeScheduleRequest](r)
		if err != nil {
			return nil, err
		}
		return h.events.ChangeTime(r.Context(), eventID, req.StartsAt, req.EndsAt)
	})
}

type changeURLRequest struct {
	URL string `json:"url"`
}

func (h *Handler) handleChangeEventURL(w http.ResponseWriter, r *http.Request) {
	h.updateEvent(w, r, func(eventID id.EventID) (*event.Event, error) {
		req, err := httputil.Decode[changeURLRequest](r)
		if err != nil {
			return nil, err
		}
		return h.events.ChangeURL(r.Context(), eventID, req.URL)
	})
}

type changeModeRequest struct {
	TeamMode bool `json:"team_mode"`
}

func (h *Handler) handleChangeEventMode(w http.ResponseWriter, r *http.Request) {
	h.updateEvent(w, r, func(eventID id.EventID) (*event.Event, error) {
		req, err := httputil.Decode[changeModeRequest](r)
		if err != nil {
			return nil, err
		}
		return h.events.ChangeMode(r.Context(), eventID, req.TeamMode)
	})
}

type setCredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleSetEventCredentials(w http.ResponseWriter, r *http.Request) {
	h.updateEvent(w, r, func(eventID id.EventID) (*event.Event, error) {
		req, err := httputil.Decode[setCredentialsRequest](r)
		if err != nil {
			return nil, err
		}
		return h.events.SetCredentials(r.Context(), eventID, req.Username, req.Password)
	})
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request, update func(eventID id.EventID) (*event.Event, error)) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := update(eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "event update rejected",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", eventID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	info := e.Info()
	httputil.WriteJSON(w, http.StatusOK, info)
}
