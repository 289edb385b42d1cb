package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/happeningnu/happening/internal/metrics"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/repository"
	"github.com/happeningnu/happening/internal/validation"
)

// EventService handles event listings, creation, deletion and attendance.
type EventService struct {
	events  EventStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(events EventStore, recorder metrics.Recorder, logger *slog.Logger) *EventService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		events:  events,
		metrics: recorder,
		logger:  logger.With("component", "events"),
	}
}

// ListAll returns every event by date.
func (s *EventService) ListAll(ctx context.Context) ([]*model.EventListing, error) {
	listings, err := s.events.ListEvents(ctx, repository.EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return listings, nil
}

// ListByOwner returns the events created by userID. Anonymous viewers
// (userID 0) own nothing.
func (s *EventService) ListByOwner(ctx context.Context, userID int64) ([]*model.EventListing, error) {
	if userID == 0 {
		return []*model.EventListing{}, nil
	}

	listings, err := s.events.ListEvents(ctx, repository.EventFilter{OwnerID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list user events: %w", err)
	}
	return listings, nil
}

// Create validates and stores a new event owned by userID.
func (s *EventService) Create(ctx context.Context, userID int64, form validation.NewEventForm) (*model.Event, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	if err := validation.NewEvent(form); err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:    form.Title,
		Location: form.Location,
		Category: form.Category,
		Date:     form.Date,
		URL:      form.URL,
		UserID:   userID,
	}

	if err := s.events.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.metrics.IncEventCreated()
	s.logger.Info("event created", "event_id", event.ID, "user_id", userID)

	return event, nil
}

// Delete removes eventID if userID owns it.
func (s *EventService) Delete(ctx context.Context, userID, eventID int64) error {
	if userID == 0 {
		return ErrUnauthenticated
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	if !event.IsOwnedBy(userID) {
		return ErrNotOwner
	}

	if err := s.events.DeleteEvent(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			// Deleted concurrently.
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.metrics.IncEventDeleted()
	s.logger.Info("event deleted", "event_id", eventID, "user_id", userID)

	return nil
}

// ToggleAttendance flips userID's attendance of eventID and returns the new
// attendee count. Anonymous viewers change nothing and get the current count.
// Unknown events yield ErrEventNotFound.
func (s *EventService) ToggleAttendance(ctx context.Context, userID, eventID int64) (int64, error) {
	if userID != 0 {
		going, err := s.events.ToggleAttendance(ctx, userID, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrEventNotFound) {
				return 0, ErrEventNotFound
			}
			return 0, fmt.Errorf("failed to toggle attendance: %w", err)
		}
		s.metrics.IncAttendanceToggled(going)
	}

	n, err := s.events.CountAttendees(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return n, nil
}
