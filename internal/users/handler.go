package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/view"
)

// ServicePort exposes the profile operations the handler needs.
type ServicePort interface {
	Get(ctx context.Context, id int64) (*User, error)
	UpdateDietaryRestrictions(ctx context.Context, id int64, restrictions string) error
}

// Handler serves the profile page.
type Handler struct {
	logger    *slog.Logger
	service   ServicePort
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a profile handler.
func NewHandler(logger *slog.Logger, service ServicePort, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes registers profile routes on an authenticated router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.show)
	r.Post("/profile", h.update)
}

type profilePageData struct {
	User   *User
	Errors map[string]string
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	user := FromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, profilePageData{User: user, Errors: map[string]string{}}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	user := FromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, r, profilePageData{User: user, Errors: map[string]string{"general": "Invalid form submission."}}, http.StatusBadRequest)
		return
	}
	restrictions := r.PostFormValue("dietary_restrictions")
	if err := h.service.UpdateDietaryRestrictions(r.Context(), user.ID, restrictions); err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("update dietary restrictions", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
		h.render(w, r, profilePageData{User: user, Errors: map[string]string{"general": shared.UserSafeMessage(err)}}, http.StatusOK)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Profile updated."})
	}
	http.Redirect(w, r, "/dashboard/profile", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data profilePageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "My profile",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/profile.html", viewData); err != nil {
		h.logger.Error("render profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
