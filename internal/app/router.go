package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mensahub/mensahub/internal/auth"
	"github.com/mensahub/mensahub/internal/authz"
	"github.com/mensahub/mensahub/internal/catalog"
	"github.com/mensahub/mensahub/internal/dashboard"
	"github.com/mensahub/mensahub/internal/reservations"
	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
	"github.com/mensahub/mensahub/internal/view"
	"github.com/mensahub/mensahub/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authz          authz.Middleware

	AuthHandler        *auth.Handler
	DashboardHandler   *dashboard.Handler
	ProfileHandler     *users.Handler
	ReservationHandler *reservations.Handler
	CatalogHandler     *catalog.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The root sends signed-in users to their dashboard, everyone else to
	// the login form.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(params.Authz.RequireAuthenticated)
		params.DashboardHandler.MountRoutes(r)
		params.ProfileHandler.MountRoutes(r)
		params.ReservationHandler.MountRoutes(r)
	})

	r.Route("/management", func(r chi.Router) {
		r.Use(params.Authz.RequireAuthenticated)
		r.Use(params.Authz.RequireRole(users.RoleNutritionist, users.RoleAdministrator))
		params.CatalogHandler.MountRoutes(r)
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
