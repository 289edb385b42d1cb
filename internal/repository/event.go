package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/happeningnu/happening/internal/model"
)

// Common errors for event repository operations.
var (
	ErrEventNotFound = errors.New("event not found")
)

// EventFilter narrows ListEvents. A zero OwnerID lists all events.
type EventFilter struct {
	OwnerID int64
}

// CreateEvent inserts a new event and fills in the generated ID and CreatedAt.
func (r *Repository) CreateEvent(ctx context.Context, event *model.Event) error {
	query := `
		INSERT INTO events (title, location, category, date, url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.Title,
		event.Location,
		event.Category,
		event.Date,
		event.URL,
		event.UserID,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetEventByID retrieves an event by its ID.
func (r *Repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `
		SELECT id, title, location, category, date, url, created_at, user_id
		FROM events
		WHERE id = $1
	`

	var e model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.Title,
		&e.Location,
		&e.Category,
		&e.Date,
		&e.URL,
		&e.CreatedAt,
		&e.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}

	return &e, nil
}

// ListEvents returns events ordered by their date string, ascending, each
// annotated with the owner's username and the current attendee count.
func (r *Repository) ListEvents(ctx context.Context, filter EventFilter) ([]*model.EventListing, error) {
	query := `
		SELECT e.id, e.title, e.location, e.category, e.date, e.url, e.created_at, e.user_id,
		       COALESCE(u.username, $1)
		FROM events e
		LEFT JOIN users u ON u.id = e.user_id
	`
	args := []any{model.UnknownUsername}

	if filter.OwnerID != 0 {
		query += ` WHERE e.user_id = $2`
		args = append(args, filter.OwnerID)
	}

	query += ` ORDER BY e.date ASC, e.id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var listings []*model.EventListing
	for rows.Next() {
		var l model.EventListing
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Location,
			&l.Category,
			&l.Date,
			&l.URL,
			&l.CreatedAt,
			&l.UserID,
			&l.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		listings = append(listings, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	counts, err := r.CountAttendeesByEvent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		l.AttendeeCount = counts[l.ID]
	}

	return listings, nil
}

// DeleteEvent removes an event owned by ownerID. Attendance rows go with it
// through the ON DELETE CASCADE foreign key.
func (r *Repository) DeleteEvent(ctx context.Context, id, ownerID int64) error {
	query := `DELETE FROM events WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}

	return nil
}

// CountAttendeesByEvent returns attendee counts for the given events.
// Events without attendees are absent from the map.
func (r *Repository) CountAttendeesByEvent(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	query := `
		SELECT event_id, COUNT(*)
		FROM user_events
		WHERE event_id = ANY($1)
		GROUP BY event_id
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64, len(eventIDs))
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan attendee count: %w", err)
		}
		counts[id] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendee counts: %w", err)
	}

	return counts, nil
}
