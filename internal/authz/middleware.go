// Package authz gates privileged routes on the caller's role.
package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/users"
)

// UserSource resolves the authenticated account behind a session.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// Middleware wires authentication and role checks for HTTP handlers.
type Middleware struct {
	Users  UserSource
	Logger *slog.Logger
}

// RequireAuthenticated ensures a signed-in user and attaches the account to
// the request context. Anonymous callers are redirected to the login page.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolveUser(w, r)
		if !ok {
			return
		}
		ctx := users.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// The check is a pure membership test and runs before any handler body, so a
// denied request never reaches code with side effects.
func (m Middleware) RequireRole(allowed ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := m.resolveUser(w, r)
			if !ok {
				return
			}
			if !roleAllowed(user.Role, allowed) {
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					sess.AddFlash(shared.FlashMessage{Kind: "danger", Message: shared.UserSafeMessage(shared.ErrForbidden)})
				}
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			ctx := users.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) resolveUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || strings.TrimSpace(sess.User()) == "" {
		m.redirectToLogin(w, r, sess)
		return nil, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", sess.User()))
		}
		m.redirectToLogin(w, r, sess)
		return nil, false
	}
	user, err := m.Users.GetByID(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Warn("authz load user", slog.Int64("user_id", id), slog.Any("error", err))
		}
		m.redirectToLogin(w, r, sess)
		return nil, false
	}
	return user, true
}

func (m Middleware) redirectToLogin(w http.ResponseWriter, r *http.Request, sess *shared.Session) {
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "info", Message: "Please sign in to access this page."})
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func roleAllowed(role users.Role, allowed []users.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
