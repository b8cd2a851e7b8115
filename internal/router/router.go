// Package router sets up all HTTP routes and middleware chains for
// CertPress. It organizes routes into the public lookup surface and the
// bearer-token-protected admin API.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certpress/internal/handlers"
	"certpress/internal/middleware"
	"certpress/internal/token"
	"certpress/web"
)

// searchRateLimit caps public certificate searches per client IP so the
// roster cannot be enumerated by walking phone numbers.
const (
	searchRateLimit  = 20
	searchRateWindow = time.Minute
)

// Deps bundles the handler groups the router wires up.
type Deps struct {
	Tokens    *token.Manager
	Auth      *handlers.Auth
	Templates *handlers.Templates
	Students  *handlers.Students
	Editor    *handlers.Editor
	Assets    *handlers.Assets
	Dashboard *handlers.Dashboard
	Public    *handlers.Public
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Auth — open endpoints issuing bearer tokens.
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", deps.Auth.Login)
		r.Post("/register", deps.Auth.Register)
	})

	// Public certificate lookup API.
	searchLimiter := middleware.NewRateLimiter(searchRateLimit, searchRateWindow)
	r.Route("/api/client/certificate", func(r chi.Router) {
		r.With(searchLimiter.Middleware).Get("/search/{number}", deps.Public.Search)
		r.Get("/{hash}", deps.Public.Certificate)
		r.Get("/{hash}/image", deps.Public.Image)
		r.Get("/{hash}/pdf", deps.Public.PDF)
	})

	// Admin API — requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens))

		r.Route("/api/templates", func(r chi.Router) {
			r.Get("/", deps.Templates.List)
			r.Post("/", deps.Templates.Create)
			r.Get("/{id}", deps.Templates.Get)
			r.Put("/{id}", deps.Templates.Update)
			r.Delete("/{id}", deps.Templates.Delete)
		})

		r.Route("/api/students", func(r chi.Router) {
			r.Get("/", deps.Students.List)
			r.Post("/register", deps.Students.Register)
			r.Post("/upload", deps.Students.Upload)
			r.Get("/search/{number}", deps.Students.Search)
			r.Put("/{id}", deps.Students.Update)
			r.Delete("/{id}", deps.Students.Delete)
		})

		r.Route("/api/editor", func(r chi.Router) {
			r.Post("/", deps.Editor.Create)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", deps.Editor.Get)
				r.Delete("/", deps.Editor.Close)
				r.Get("/preview", deps.Editor.Preview)
				r.Post("/save", deps.Editor.Save)
				r.Post("/select", deps.Editor.Select)
				r.Put("/canvas", deps.Editor.SetCanvas)
				r.Post("/elements", deps.Editor.AddElement)
				r.Route("/elements/{elementId}", func(r chi.Router) {
					r.Delete("/", deps.Editor.DeleteElement)
					r.Put("/position", deps.Editor.MoveElement)
					r.Put("/size", deps.Editor.ResizeElement)
					r.Put("/text", deps.Editor.SetText)
					r.Put("/style", deps.Editor.SetStyle)
					r.Put("/binding", deps.Editor.SetBinding)
				})
			})
		})

		r.Post("/api/assets", deps.Assets.Upload)
		r.Delete("/api/assets", deps.Assets.Delete)
		r.Get("/api/dashboard/stats", deps.Dashboard.Stats)
	})

	// Public HTML pages.
	r.Get("/", deps.Public.HomePage)
	r.Get("/certificate/{hash}", deps.Public.CertificatePage)

	// Embedded static assets.
	if static, err := fs.Sub(web.StaticFS, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
