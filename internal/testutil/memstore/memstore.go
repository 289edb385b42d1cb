// Package memstore provides in-memory stand-ins for the Postgres repository
// and the Redis cache, with the same error contracts.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/repository"
)

type attendanceKey struct {
	userID, eventID int64
}

// Store is an in-memory repository.
type Store struct {
	mu         sync.Mutex
	users      map[int64]*model.User
	events     map[int64]*model.Event
	sessions   map[string]*model.Session
	attendance map[attendanceKey]time.Time
	nextUser   int64
	nextEvent  int64

	// Now is the clock used for timestamps and session expiry.
	Now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:      make(map[int64]*model.User),
		events:     make(map[int64]*model.Event),
		sessions:   make(map[string]*model.Session),
		attendance: make(map[attendanceKey]time.Time),
		Now:        time.Now,
	}
}

// CreateUser inserts user, rejecting a duplicate email.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	s.nextUser++
	user.ID = s.nextUser
	user.JoinedAt = s.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail returns a copy of the user with exactly this email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// CountUsers returns the number of accounts.
func (s *Store) CountUsers(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// CreateEvent inserts event. The owner must exist.
func (s *Store) CreateEvent(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[event.UserID]; !ok {
		return repository.ErrUserNotFound
	}

	s.nextEvent++
	event.ID = s.nextEvent
	event.CreatedAt = s.Now()
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

// GetEventByID returns a copy of the event.
func (s *Store) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

// ListEvents mirrors the repository ordering: date, then id.
func (s *Store) ListEvents(_ context.Context, filter repository.EventFilter) ([]*model.EventListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings := []*model.EventListing{}
	for _, e := range s.events {
		if filter.OwnerID != 0 && e.UserID != filter.OwnerID {
			continue
		}
		l := &model.EventListing{Event: *e, Username: model.UnknownUsername}
		if u, ok := s.users[e.UserID]; ok {
			l.Username = u.Username
		}
		l.AttendeeCount = s.countLocked(e.ID)
		listings = append(listings, l)
	}

	sort.Slice(listings, func(i, j int) bool {
		if listings[i].Date != listings[j].Date {
			return listings[i].Date < listings[j].Date
		}
		return listings[i].ID < listings[j].ID
	})
	return listings, nil
}

// DeleteEvent removes an owned event and its attendance.
func (s *Store) DeleteEvent(_ context.Context, id, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok || e.UserID != ownerID {
		return repository.ErrEventNotFound
	}

	delete(s.events, id)
	for k := range s.attendance {
		if k.eventID == id {
			delete(s.attendance, k)
		}
	}
	return nil
}

// ToggleAttendance flips attendance and reports the new state.
func (s *Store) ToggleAttendance(_ context.Context, userID, eventID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attendanceKey{userID: userID, eventID: eventID}
	if _, ok := s.attendance[key]; ok {
		delete(s.attendance, key)
		return false, nil
	}

	if _, ok := s.events[eventID]; !ok {
		return false, repository.ErrEventNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return false, repository.ErrUserNotFound
	}

	s.attendance[key] = s.Now()
	return true, nil
}

// IsAttending reports whether userID is going to eventID.
func (s *Store) IsAttending(_ context.Context, userID, eventID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attendance[attendanceKey{userID: userID, eventID: eventID}]
	return ok, nil
}

// CountAttendees returns the attendee count for eventID.
func (s *Store) CountAttendees(_ context.Context, eventID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(eventID), nil
}

func (s *Store) countLocked(eventID int64) int64 {
	var n int64
	for k := range s.attendance {
		if k.eventID == eventID {
			n++
		}
	}
	return n
}

// CreateSession stores a session for an existing user.
func (s *Store) CreateSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	session.CreatedAt = s.Now()
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

// TouchSession slides a live session and returns its viewer.
func (s *Store) TouchSession(_ context.Context, id string, expiresAt time.Time) (*model.Viewer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.IsExpired(s.Now()) {
		return nil, repository.ErrSessionNotFound
	}
	user, ok := s.users[session.UserID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	session.ExpiresAt = expiresAt
	return &model.Viewer{SessionID: id, UserID: user.ID, Username: user.Username}, nil
}

// DeleteSession removes a session if present.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpiredSessions drops sessions that expired at or before now.
func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// SessionCount returns the number of stored sessions.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
