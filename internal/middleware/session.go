package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/model"
)

// DefaultSessionCookieName names the cookie holding the session token.
const DefaultSessionCookieName = "happening_session"

// SessionCookie describes how the session token is stored in the browser.
// Expiry is enforced server-side, so the cookie itself has no Max-Age.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Write sets the session cookie to token.
func (c SessionCookie) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionResumer resolves a token to the logged-in viewer, or nil.
type SessionResumer interface {
	Resume(ctx context.Context, token string) (*model.Viewer, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Sessions SessionResumer
	Cookie   SessionCookie
}

// Session attaches the visitor's session token and, for logged-in visitors,
// their viewer to the request context. Visitors without a usable cookie get
// a fresh token so flash messages have somewhere to live.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := ""
			if c, err := r.Cookie(cfg.Cookie.Name); err == nil && auth.ValidTokenFormat(c.Value) {
				token = c.Value
			}

			if token == "" {
				fresh, err := auth.NewSessionToken()
				if err != nil {
					cfg.Logger.Error("failed to mint session token",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(ctx)),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				token = fresh
				cfg.Cookie.Write(w, token)
			} else {
				viewer, err := cfg.Sessions.Resume(ctx, token)
				if err != nil {
					// Serve the page anonymously rather than failing every request.
					cfg.Logger.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(ctx)),
					)
				}
				if viewer != nil {
					ctx = auth.ContextWithViewer(ctx, viewer)
					SetLogUserID(ctx, viewer.UserID)
				}
			}

			ctx = auth.ContextWithToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
