// Package handler provides HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/middleware"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/view"
)

// FlashStore queues one-shot messages per session token.
type FlashStore interface {
	PushFlash(ctx context.Context, token string, f model.Flash) error
	PopFlashes(ctx context.Context, token string) ([]model.Flash, error)
}

// Handler holds what every page handler needs to render and redirect.
type Handler struct {
	views   *view.Renderer
	flashes FlashStore
	logger  *slog.Logger
}

// New creates a new Handler instance.
func New(views *view.Renderer, flashes FlashStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		views:   views,
		flashes: flashes,
		logger:  logger,
	}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found.")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
}

// InternalError renders the generic failure page. It doubles as the panic
// fallback for middleware.Recoverer.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// serverError logs err with the request id and renders the 500 page.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	h.InternalError(w, r)
}

// page builds the shared render context for r. Pending flashes are consumed.
func (h *Handler) page(r *http.Request, title string, data any) *view.Page {
	viewer := auth.ViewerFromContext(r.Context())

	p := &view.Page{
		Title:      title,
		IsLoggedIn: viewer.IsLoggedIn(),
		Messages:   h.popFlashes(r),
		CSRFField:  csrf.TemplateField(r),
		CSRFToken:  csrf.Token(r),
		NotHome:    r.URL.Path != "/",
		Data:       data,
	}
	if p.IsLoggedIn {
		p.Username = viewer.Username
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.views.Render(w, name, h.page(r, title, data)); err != nil {
		h.logger.Error("render failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"template", name,
			"error", err,
		)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, view.PageError, view.TitleError, view.ErrorData{Status: status, Message: msg})
}

// flash queues messages for the visitor's current session token.
func (h *Handler) flash(r *http.Request, msgs ...model.Flash) {
	h.flashTo(r.Context(), auth.TokenFromContext(r.Context()), msgs...)
}

// flashTo queues messages for token. Failures are logged and dropped; a
// missing message never fails the request.
func (h *Handler) flashTo(ctx context.Context, token string, msgs ...model.Flash) {
	if token == "" || h.flashes == nil {
		return
	}
	for _, m := range msgs {
		if err := h.flashes.PushFlash(ctx, token, m); err != nil {
			h.logger.Warn("failed to queue flash message",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
			return
		}
	}
}

func (h *Handler) popFlashes(r *http.Request) []model.Flash {
	token := auth.TokenFromContext(r.Context())
	if token == "" || h.flashes == nil {
		return nil
	}
	msgs, err := h.flashes.PopFlashes(r.Context(), token)
	if err != nil {
		h.logger.Warn("failed to read flash messages",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		return nil
	}
	return msgs
}

// redirect always answers 303 so the browser follows with a GET.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
