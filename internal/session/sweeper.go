// Package session removes expired login sessions in the background.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/happeningnu/happening/internal/metrics"
)

// Store deletes sessions whose deadline has passed.
type Store interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// DefaultSweepTimeout bounds a single sweep query.
const DefaultSweepTimeout = 10 * time.Second

// Sweeper runs DeleteExpiredSessions on a cron schedule.
type Sweeper struct {
	store    Store
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	cron    *cron.Cron
	started bool
	mu      sync.Mutex
}

// NewSweeper creates a sweeper that fires every interval.
func NewSweeper(store Store, interval time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Sweeper {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		logger:   logger.With("component", "session.sweeper"),
		metrics:  recorder,
		interval: interval,
		timeout:  DefaultSweepTimeout,
		now:      time.Now,
	}
}

// Start schedules the sweep. Overlapping runs are skipped.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("sweeper already started")
	}
	if s.interval <= 0 {
		return fmt.Errorf("invalid sweep interval %s", s.interval)
	}

	logger := cronLogger{s.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	spec := "@every " + s.interval.String()
	if _, err := c.AddFunc(spec, func() { _, _ = s.SweepOnce(context.Background()) }); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", spec, err)
	}

	c.Start()
	s.cron = c
	s.started = true
	s.logger.Info("session sweeper started", "interval", s.interval)

	return nil
}

// SweepOnce deletes expired sessions and returns how many went.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return 0, err
	}

	s.metrics.AddSessionsSwept(n)
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}

// Shutdown stops scheduling and waits for a running sweep to finish.
// It implements server.ShutdownFunc for integration with graceful shutdown.
func (s *Sweeper) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.started = false
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.logger.Info("session sweeper stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("session sweeper shutdown timed out")
		return ctx.Err()
	}
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
