// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/repository"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrNotOwner           = errors.New("event belongs to another user")
	ErrEventNotFound      = errors.New("event not found")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore persists authenticated sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *model.Session) error
	TouchSession(ctx context.Context, id string, expiresAt time.Time) (*model.Viewer, error)
	DeleteSession(ctx context.Context, id string) error
}

// EventStore persists events and attendance.
type EventStore interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	ListEvents(ctx context.Context, filter repository.EventFilter) ([]*model.EventListing, error)
	DeleteEvent(ctx context.Context, id, ownerID int64) error
	ToggleAttendance(ctx context.Context, userID, eventID int64) (bool, error)
	CountAttendees(ctx context.Context, eventID int64) (int64, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}
