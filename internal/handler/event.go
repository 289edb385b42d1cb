package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/service"
	"github.com/happeningnu/happening/internal/validation"
	"github.com/happeningnu/happening/internal/view"
)

const msgEventCreated = "Event created."

// Events is the subset of service.EventService used by EventHandler.
type Events interface {
	ListAll(ctx context.Context) ([]*model.EventListing, error)
	ListByOwner(ctx context.Context, userID int64) ([]*model.EventListing, error)
	Create(ctx context.Context, userID int64, form validation.NewEventForm) (*model.Event, error)
	Delete(ctx context.Context, userID, eventID int64) error
	ToggleAttendance(ctx context.Context, userID, eventID int64) (int64, error)
}

// EventHandler serves the event pages and the attendance fragment.
type EventHandler struct {
	*Handler
	events Events
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(base *Handler, events Events) *EventHandler {
	return &EventHandler{
		Handler: base,
		events:  events,
	}
}

// Home handles GET /.
func (h *EventHandler) Home(w http.ResponseWriter, r *http.Request) {
	listings, err := h.events.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageHome, view.TitleHome, listings)
}

// UserEvents handles GET /user_events. Anonymous visitors see an empty list.
func (h *EventHandler) UserEvents(w http.ResponseWriter, r *http.Request) {
	listings, err := h.events.ListByOwner(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageUserEvents, view.TitleHome, listings)
}

// NewEventForm handles GET /new_event.
func (h *EventHandler) NewEventForm(w http.ResponseWriter, r *http.Request) {
	if auth.UserIDFromContext(r.Context()) == 0 {
		redirect(w, r, "/login")
		return
	}
	h.render(w, r, http.StatusOK, view.PageNewEvent, view.TitleNewEvent, view.NewEventData{
		Locations:  model.EventLocations,
		Categories: model.EventCategories,
	})
}

// Create handles POST /new_event.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		redirect(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flash(r, model.Error(msgInvalidFormRequest))
		redirect(w, r, "/new_event")
		return
	}

	_, err := h.events.Create(r.Context(), userID, validation.NewEventForm{
		Title:    r.PostForm.Get("title"),
		URL:      r.PostForm.Get("url"),
		Location: r.PostForm.Get("location"),
		Date:     r.PostForm.Get("date"),
		Category: r.PostForm.Get("category"),
	})
	if err != nil {
		if msgs, ok := validation.Messages(err); ok {
			h.flash(r, errorFlashes(msgs)...)
			redirect(w, r, "/new_event")
			return
		}
		if errors.Is(err, service.ErrUnauthenticated) {
			redirect(w, r, "/login")
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.flash(r, model.Info(msgEventCreated))
	redirect(w, r, "/")
}

// Delete handles POST /event/{id}/delete. Unknown events and events owned by
// someone else are ignored without a message.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		redirect(w, r, "/login")
		return
	}

	eventID, ok := eventIDParam(r)
	if !ok {
		redirect(w, r, "/user_events")
		return
	}

	err := h.events.Delete(r.Context(), userID, eventID)
	switch {
	case err == nil,
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrNotOwner):
		redirect(w, r, "/user_events")
	case errors.Is(err, service.ErrUnauthenticated):
		redirect(w, r, "/login")
	default:
		h.serverError(w, r, err)
	}
}

// Going handles POST /api/event/{id}/going and answers with the attendee
// count fragment.
func (h *EventHandler) Going(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	count, err := h.events.ToggleAttendance(r.Context(), auth.UserIDFromContext(r.Context()), eventID)
	if err != nil && !errors.Is(err, service.ErrEventNotFound) {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.AttendeeCount(w, eventID, count); err != nil {
		h.logger.Error("render attendee count", "event_id", eventID, "error", err)
	}
}

func eventIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
