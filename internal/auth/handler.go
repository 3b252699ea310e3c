package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type registerForm struct {
	FullName string `validate:"required,max=150"`
	Email    string `validate:"required,email,max=150"`
	Password string `validate:"required,min=8"`
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Remember bool
}

type registerPageData struct {
	Form   registerForm
	Errors map[string]string
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, registerPageData{Form: registerForm{}}, http.StatusOK)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	form := registerForm{
		FullName: r.PostFormValue("full_name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = registerFieldMessage(fieldErr)
			}
		}
	}

	if len(formErrors) == 0 {
		_, err := h.service.Register(r.Context(), form.FullName, form.Email, form.Password)
		switch {
		case err == nil:
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Registration complete. Please sign in to continue."})
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrConflict):
			formErrors["Email"] = "This email is already in use. Please try another."
		case errors.Is(err, shared.ErrValidation):
			formErrors["general"] = shared.UserSafeMessage(err)
		default:
			h.logger.Error("register user", slog.Any("error", err))
			formErrors["general"] = shared.UserSafeMessage(err)
		}
	}

	form.Password = ""
	h.renderRegister(w, r, registerPageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginPageData{Form: loginForm{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Remember: r.PostFormValue("remember") != "",
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		// A malformed form gets the same generic message as bad credentials
		// so the response never hints at which factor failed.
		formErrors["general"] = shared.UserSafeMessage(shared.ErrInvalidCredentials)
	}

	if len(formErrors) == 0 {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			formErrors["general"] = shared.UserSafeMessage(shared.ErrInvalidCredentials)
		case err != nil:
			h.logger.Error("authenticate user", slog.Any("error", err))
			formErrors["general"] = shared.UserSafeMessage(err)
		default:
			if sess == nil {
				h.logger.Error("session missing during login")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sess.SetUser(strconv.FormatInt(user.ID, 10))
			if form.Remember {
				sess.Remember()
			}
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + user.FullName + "."})

			expiresAt := time.Now().Add(h.sessionManager.TTL(sess))
			if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
				h.logger.Warn("register session", slog.Any("error", err))
			}
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.renderLogin(w, r, loginPageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, data registerPageData, status int) {
	h.render(w, r, "pages/register.html", "Create account", data, status)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	h.render(w, r, "pages/login.html", "Sign in", data, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render auth page", slog.String("template", template), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func registerFieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Field() {
	case "FullName":
		return "Full name is required."
	case "Email":
		return "A valid email address is required."
	case "Password":
		return "Password must be at least 8 characters."
	default:
		return "Invalid value."
	}
}
