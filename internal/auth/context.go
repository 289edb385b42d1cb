package auth

import (
	"context"

	"github.com/happeningnu/happening/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	viewerContextKey contextKey = "viewer"
	tokenContextKey  contextKey = "session_token"
)

// ContextWithViewer stores the logged-in viewer for the request.
func ContextWithViewer(ctx context.Context, v *model.Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey, v)
}

// ViewerFromContext returns the logged-in viewer, or nil for anonymous
// requests.
func ViewerFromContext(ctx context.Context) *model.Viewer {
	v, ok := ctx.Value(viewerContextKey).(*model.Viewer)
	if !ok {
		return nil
	}
	return v
}

// UserIDFromContext returns the logged-in user's ID, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	v := ViewerFromContext(ctx)
	if v == nil {
		return 0
	}
	return v.UserID
}

// ContextWithToken stores the session cookie token, which is present for
// anonymous visitors too and keys their flash messages.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the session cookie token or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
