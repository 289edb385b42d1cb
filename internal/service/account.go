package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/metrics"
	"github.com/happeningnu/happening/internal/model"
	"github.com/happeningnu/happening/internal/repository"
	"github.com/happeningnu/happening/internal/validation"
)

// AccountService handles signup, login and session lifetime.
type AccountService struct {
	users       UserStore
	sessions    SessionStore
	hasher      PasswordHasher
	idleTimeout time.Duration
	metrics     metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	users UserStore,
	sessions SessionStore,
	hasher PasswordHasher,
	idleTimeout time.Duration,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:       users,
		sessions:    sessions,
		hasher:      hasher,
		idleTimeout: idleTimeout,
		metrics:     recorder,
		logger:      logger.With("component", "account"),
		now:         time.Now,
	}
}

// Signup validates the form and registers a new user. Validation failures
// come back as validation.Errors; a duplicate email as ErrEmailTaken.
func (s *AccountService) Signup(ctx context.Context, form validation.SignupForm) (*model.User, error) {
	if err := validation.Signup(form); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, form.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: form.Username,
		Email:    form.Email,
		Password: hash,
	}

	// A concurrent signup can still win between the check and the insert;
	// the unique constraint settles it.
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncSignup()
	s.logger.Info("user signed up", "user_id", user.ID)

	return user, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, form validation.LoginForm) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.LoginFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(form.Password, user.Password)
	if err != nil {
		// Unreadable stored hash; treat as a failed login but keep a trace.
		s.logger.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return user, nil
}

// StartSession issues a fresh session token for userID. Callers replace any
// previous cookie with it, so a login never reuses an anonymous token.
func (s *AccountService) StartSession(ctx context.Context, userID int64) (string, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return "", err
	}

	session := &model.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.idleTimeout),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}

	return token, nil
}

// Resume looks up the viewer behind token and extends the session by the
// idle timeout. Unknown or expired tokens yield a nil viewer.
func (s *AccountService) Resume(ctx context.Context, token string) (*model.Viewer, error) {
	viewer, err := s.sessions.TouchSession(ctx, token, s.now().Add(s.idleTimeout))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	return viewer, nil
}

// Logout ends the session behind token. Logging out twice is harmless.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}
