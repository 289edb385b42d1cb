package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/happeningnu/happening/internal/model"
)

// Common errors for session repository operations.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// CreateSession stores an authenticated session.
func (r *Repository) CreateSession(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.ExpiresAt).Scan(&s.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// TouchSession slides a live session's deadline to expiresAt and returns the
// viewer it belongs to. Expired or unknown sessions yield ErrSessionNotFound.
func (r *Repository) TouchSession(ctx context.Context, id string, expiresAt time.Time) (*model.Viewer, error) {
	query := `
		UPDATE sessions s
		SET expires_at = $2
		FROM users u
		WHERE s.id = $1
		  AND s.expires_at > NOW()
		  AND u.id = s.user_id
		RETURNING s.user_id, u.username
	`

	viewer := &model.Viewer{SessionID: id}
	err := r.pool.QueryRow(ctx, query, id, expiresAt).Scan(&viewer.UserID, &viewer.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	return viewer, nil
}

// DeleteSession removes a session. Deleting an absent session is not an error.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session whose deadline is before now
// and returns how many were removed.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
