// Package dashboard serves the signed-in landing page.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/mensahub/mensahub/internal/catalog"
	"github.com/mensahub/mensahub/internal/reservations"
	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
	"github.com/mensahub/mensahub/internal/view"
)

// MenuSource lists the menus published for a calendar date.
type MenuSource interface {
	MenusOn(ctx context.Context, date time.Time) ([]catalog.Menu, error)
}

// ReservationSource lists a user's reservations.
type ReservationSource interface {
	ListForUser(ctx context.Context, userID int64) ([]reservations.Detail, error)
}

// Handler renders the dashboard.
type Handler struct {
	logger       *slog.Logger
	menus        MenuSource
	reservations ReservationSource
	templates    *view.Engine
	csrf         *shared.CSRFManager
	now          func() time.Time
}

// NewHandler constructs a dashboard handler.
func NewHandler(logger *slog.Logger, menus MenuSource, res ReservationSource, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, menus: menus, reservations: res, templates: templates, csrf: csrf, now: time.Now}
}

// MountRoutes registers the dashboard index.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
}

type pageData struct {
	User     *users.User
	Menus    []catalog.Menu
	Reserved map[int64]bool
	Errors   map[string]string
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	data := pageData{User: user, Reserved: map[int64]bool{}, Errors: map[string]string{}}
	today := h.now()

	// The two queries are independent; load them in parallel.
	g, ctx := errgroup.WithContext(r.Context())
	var menus []catalog.Menu
	var mine []reservations.Detail
	g.Go(func() error {
		var err error
		menus, err = h.menus.MenusOn(ctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = h.reservations.ListForUser(ctx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		data.Errors["general"] = shared.UserSafeMessage(err)
	} else {
		data.Menus = menus
		for _, item := range mine {
			data.Reserved[item.MenuID] = true
		}
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Dashboard",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
