package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"selfreg-backend/internal/config"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/handler"
)

// Handlers groups every route owner the router mounts.
type Handlers struct {
	Health        handler.HealthHandler
	Auth          handler.AuthHandler
	Public        handler.PublicHandler
	Registrations handler.RegistrationHandler
	Categories    handler.CategoryHandler
	Panchayaths   handler.PanchayathHandler
	Announcements handler.AnnouncementHandler
	Utilities     handler.UtilityHandler
	Admins        handler.AdminHandler
	Ledger        handler.LedgerHandler
	Reports       handler.ReportHandler
	Activity      handler.ActivityLogHandler
}

// NewRouter wires HTTP routes and middleware. metricsHandler may be nil.
func NewRouter(cfg config.Config, logger *slog.Logger, tokens TokenVerifier, metricsHandler http.Handler, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}

	h.Health.RegisterRoutes(r)
	r.Group(func(pr chi.Router) {
		if cfg.PublicRateLimit > 0 {
			pr.Use(httprate.LimitByIP(cfg.PublicRateLimit, time.Minute))
		}
		h.Auth.RegisterRoutes(pr)
		h.Public.RegisterRoutes(pr)
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Every admin role may enter; per-module permissions are enforced by the services.
	r.Group(func(ar chi.Router) {
		ar.Use(AuthMiddleware(tokens))
		ar.Use(RequireRole(domain.RoleSuperAdmin, domain.RoleLocalAdmin, domain.RoleUserAdmin))
		h.Auth.RegisterProtectedRoutes(ar)
		h.Registrations.RegisterRoutes(ar)
		h.Categories.RegisterRoutes(ar)
		h.Panchayaths.RegisterRoutes(ar)
		h.Announcements.RegisterRoutes(ar)
		h.Utilities.RegisterRoutes(ar)
		h.Admins.RegisterRoutes(ar)
		h.Ledger.RegisterRoutes(ar)
		h.Reports.RegisterRoutes(ar)
		h.Activity.RegisterRoutes(ar)
	})

	return r
}
