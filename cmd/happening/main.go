// Package main is the entrypoint for the Happening nu web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/happeningnu/happening/internal/auth"
	"github.com/happeningnu/happening/internal/cache"
	"github.com/happeningnu/happening/internal/config"
	"github.com/happeningnu/happening/internal/handler"
	"github.com/happeningnu/happening/internal/metrics"
	"github.com/happeningnu/happening/internal/middleware"
	"github.com/happeningnu/happening/internal/repository"
	"github.com/happeningnu/happening/internal/server"
	"github.com/happeningnu/happening/internal/service"
	"github.com/happeningnu/happening/internal/session"
	"github.com/happeningnu/happening/internal/view"
	"github.com/happeningnu/happening/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return errors.New("database unavailable")
	}
	defer repo.Close()
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, repo.Pool()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database migrations applied")
	}

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return errors.New("redis unavailable")
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	hasher, err := newHasher(cfg)
	if err != nil {
		return err
	}

	recorder := metrics.NewInMemory()
	accounts := service.NewAccountService(repo, repo, hasher, cfg.SessionIdleTimeout, recorder, logger)
	events := service.NewEventService(repo, recorder, logger)

	views, err := view.New()
	if err != nil {
		return err
	}

	cookie := middleware.SessionCookie{
		Name:   middleware.DefaultSessionCookieName,
		Secure: cfg.SessionCookieSecure,
	}
	base := handler.New(views, cacheClient, logger)
	routes := &handler.Routes{
		Base:     base,
		Accounts: handler.NewAccountHandler(base, accounts, cookie),
		Events:   handler.NewEventHandler(base, events),
		Health:   handler.NewHealthHandler(repo, cacheClient),
		Metrics:  handler.NewMetricsHandler(recorder),
		AuthRateLimit: middleware.RateLimitAuth(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Enabled: cfg.RateLimitAuthEnabled,
			RPS:     cfg.RateLimitAuthRPS,
			Burst:   cfg.RateLimitAuthBurst,
		}),
	}

	r := setupRouter(cfg, logger, recorder, routes, accounts, cookie)

	sweeper := session.NewSweeper(repo, cfg.SessionSweepInterval, logger, recorder)
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start session sweeper: %w", err)
	}

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("session-sweeper", sweeper.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"salt_mode", cfg.PasswordSaltMode,
	)

	return srv.Run(ctx)
}

// newHasher picks the password hashing mode from configuration.
func newHasher(cfg *config.Config) (*auth.Hasher, error) {
	if cfg.PasswordSaltMode != config.SaltModeFixed {
		return auth.NewHasher(auth.DefaultParams), nil
	}
	salt, err := cfg.SaltBytes()
	if err != nil {
		return nil, err
	}
	return auth.NewFixedSaltHasher(auth.CompatParams, salt), nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	cfg *config.Config,
	logger *slog.Logger,
	recorder metrics.Recorder,
	routes *handler.Routes,
	accounts middleware.SessionResumer,
	cookie middleware.SessionCookie,
) *chi.Mux {
	r := chi.NewRouter()

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recoverer(logger, http.HandlerFunc(routes.Base.InternalError)))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	routes.Mount(r,
		plaintextOutsideProduction(cfg),
		csrf.Protect(
			[]byte(cfg.CSRFKey),
			csrf.Secure(cfg.SessionCookieSecure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Warn("csrf check failed",
					"request_id", middleware.GetRequestID(r.Context()),
					"reason", csrf.FailureReason(r),
				)
				http.Error(w, "Forbidden - invalid or missing CSRF token", http.StatusForbidden)
			})),
		),
		middleware.Session(middleware.SessionConfig{
			Logger:   logger,
			Sessions: accounts,
			Cookie:   cookie,
		}),
	)

	return r
}

// plaintextOutsideProduction marks requests as plain HTTP so the CSRF
// origin check does not demand an https Referer during local development.
func plaintextOutsideProduction(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.IsProduction() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
