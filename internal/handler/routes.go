package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes groups the handlers mounted on the router.
type Routes struct {
	Base     *Handler
	Accounts *AccountHandler
	Events   *EventHandler
	Health   *HealthHandler
	Metrics  *MetricsHandler

	// AuthRateLimit guards credential submissions. Optional.
	AuthRateLimit func(http.Handler) http.Handler
}

// Mount registers every route on r. Probes and metrics are served bare;
// pages go through pageMiddleware (sessions, CSRF).
func (rt *Routes) Mount(r chi.Router, pageMiddleware ...func(http.Handler) http.Handler) {
	if rt.Health != nil {
		r.Get("/healthz", rt.Health.Healthz)
		r.Get("/readyz", rt.Health.Readyz)
	}
	if rt.Metrics != nil {
		r.Get("/metrics", rt.Metrics.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(pageMiddleware...)

		r.Get("/", rt.Events.Home)
		r.Get("/user_events", rt.Events.UserEvents)
		r.Get("/new_event", rt.Events.NewEventForm)
		r.Post("/new_event", rt.Events.Create)
		r.Post("/event/{id}/delete", rt.Events.Delete)
		r.Post("/api/event/{id}/going", rt.Events.Going)

		r.Get("/login", rt.Accounts.LoginForm)
		r.Get("/signup", rt.Accounts.SignupForm)
		r.Get("/logout", rt.Accounts.Logout)

		r.Group(func(r chi.Router) {
			if rt.AuthRateLimit != nil {
				r.Use(rt.AuthRateLimit)
			}
			r.Post("/login", rt.Accounts.Login)
			r.Post("/signup", rt.Accounts.Signup)
		})
	})

	pages := chi.Chain(pageMiddleware...)
	r.NotFound(pages.HandlerFunc(rt.Base.NotFound).ServeHTTP)
	r.MethodNotAllowed(pages.HandlerFunc(rt.Base.MethodNotAllowed).ServeHTTP)
}
