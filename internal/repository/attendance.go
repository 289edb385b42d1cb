package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ToggleAttendance flips whether userID is going to eventID and reports the
// new state. Delete and insert run in one transaction, and the
// (user_id, event_id) unique key makes concurrent toggles collapse to at
// most one row.
func (r *Repository) ToggleAttendance(ctx context.Context, userID, eventID int64) (bool, error) {
	var going bool

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		deleted, err := tx.Exec(ctx,
			`DELETE FROM user_events WHERE user_id = $1 AND event_id = $2`,
			userID, eventID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove attendance: %w", err)
		}
		if deleted.RowsAffected() > 0 {
			going = false
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_events (user_id, event_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, event_id) DO NOTHING
		`, userID, eventID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to add attendance: %w", err)
		}
		going = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return going, nil
}

// IsAttending reports whether userID is marked as going to eventID.
func (r *Repository) IsAttending(ctx context.Context, userID, eventID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_events WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return exists, nil
}

// CountAttendees returns how many users are going to eventID.
func (r *Repository) CountAttendees(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_events WHERE event_id = $1`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return n, nil
}
