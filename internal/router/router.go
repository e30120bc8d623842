// Package router sets up all HTTP routes and middleware chains for the
// orgpress API. Public reads are open; every mutating endpoint sits
// behind bearer-token authentication.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orgpress/internal/auth"
	"orgpress/internal/handlers"
	"orgpress/internal/middleware"
)

// loginRateLimit allows this many login attempts per IP per window.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(authSvc *auth.Service, authH *handlers.Auth, content *handlers.Content, upload *handlers.Upload, sectionsH *handlers.Sections) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecurityHeaders)

	// Health check.
	r.Get("/health", healthHandler)

	requireAuth := middleware.RequireAuth(authSvc)
	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)

	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/verify", authH.Verify)
			r.Get("/2fa/setup", authH.TwoFASetup)
		})
	})

	r.Route("/content", func(r chi.Router) {
		// Public reads.
		r.Get("/", content.List)
		r.Get("/{id}", content.Get)
		r.Post("/{id}/view", content.View)

		// Admin mutations.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", content.Create)
			r.Put("/{id}", content.Update)
			r.Delete("/{id}", content.Delete)
		})
	})

	r.With(requireAuth).Post("/upload", upload.Handle)

	r.Get("/sections", sectionsH.List)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
