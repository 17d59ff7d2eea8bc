package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/signbridge/signbridge-api/internal/api/auth"
	"github.com/signbridge/signbridge-api/internal/api/caption"
	"github.com/signbridge/signbridge-api/internal/api/gesture"
	"github.com/signbridge/signbridge-api/internal/api/profile"
	"github.com/signbridge/signbridge-api/internal/types"
)

// Config carries the handlers and middleware the router wires together.
// Server-wide middleware (request ID, logger, recoverer) is applied in
// main.go before this router is mounted.
type Config struct {
	Logger         *slog.Logger
	AuthHandler    *auth.AuthHandler
	ProfileHandler *profile.ProfileHandler
	CaptionHandler *caption.CaptionHandler
	GestureHandler *gesture.GestureHandler

	Authenticate func(next http.Handler) http.Handler
}

// SetupRouter builds the application router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
			r.Get("/auth/{provider}", cfg.AuthHandler.BeginOAuth)
			r.Get("/auth/{provider}/callback", cfg.AuthHandler.OAuthCallback)
		})

		// Protected routes.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticate)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Put("/auth/update-password", cfg.AuthHandler.UpdatePassword)
			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Get("/profiles/me", cfg.ProfileHandler.GetMyProfile)
			r.Put("/profiles/me", cfg.ProfileHandler.UpdateMyProfile)

			r.Route("/captions/sessions", func(r chi.Router) {
				r.Post("/", cfg.CaptionHandler.CreateSession)
				r.Get("/", cfg.CaptionHandler.ListSessions)
				r.Get("/{sessionID}", cfg.CaptionHandler.GetSession)
				r.Post("/{sessionID}/end", cfg.CaptionHandler.EndSession)
				r.Put("/{sessionID}/draft", cfg.CaptionHandler.SaveDraft)
				r.Post("/{sessionID}/segments", cfg.CaptionHandler.AppendSegment)
				r.Get("/{sessionID}/segments", cfg.CaptionHandler.ListSegments)
				r.Get("/{sessionID}/export", cfg.CaptionHandler.ExportTranscript)
				r.Post("/{sessionID}/summary", cfg.CaptionHandler.SummarizeSession)
			})

			r.Route("/gestures", func(r chi.Router) {
				r.Post("/classify", cfg.GestureHandler.ClassifyFrame)
				r.Post("/translate", cfg.GestureHandler.Translate)
				r.Get("/history", cfg.GestureHandler.History)
			})

			// Teacher-only routes.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(cfg.Logger, types.RoleTeacher))
				r.Get("/profiles/students", cfg.ProfileHandler.ListStudents)
			})
		})
	})

	return r
}
