package reservations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
	"github.com/mensahub/mensahub/internal/view"
)

// ServicePort exposes the reservation operations the handler needs.
type ServicePort interface {
	Reserve(ctx context.Context, userID, menuID int64) (*Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]Detail, error)
}

// Handler serves the reservation pages.
type Handler struct {
	logger    *slog.Logger
	service   ServicePort
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a reservation handler.
func NewHandler(logger *slog.Logger, service ServicePort, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers reservation routes on an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reservations", h.list)
	r.Post("/reservations", h.create)
}

type listPageData struct {
	Items []Detail
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	items, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("list reservations", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, listPageData{Items: items})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user := users.FromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/dashboard", "danger", "Invalid form submission.")
		return
	}
	menuID, err := strconv.ParseInt(r.PostFormValue("menu_id"), 10, 64)
	if err != nil || menuID <= 0 {
		h.redirectWithFlash(w, r, "/dashboard", "danger", "The selected menu could not be found.")
		return
	}

	if _, err := h.service.Reserve(r.Context(), user.ID, menuID); err != nil {
		switch {
		case errors.Is(err, shared.ErrConflict):
			h.redirectWithFlash(w, r, "/dashboard", "info", "You have already reserved this menu.")
		case errors.Is(err, shared.ErrNotFound):
			h.redirectWithFlash(w, r, "/dashboard", "danger", "The selected menu could not be found.")
		default:
			h.logger.Error("create reservation", slog.Int64("menu_id", menuID), slog.Any("error", err))
			h.redirectWithFlash(w, r, "/dashboard", "danger", shared.UserSafeMessage(err))
		}
		return
	}
	h.redirectWithFlash(w, r, "/dashboard/reservations", "success", "Your reservation is confirmed.")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data listPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "My reservations",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/reservations.html", viewData); err != nil {
		h.logger.Error("render reservations", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
