package users

import "context"

type contextKey struct{}

// ContextWithUser attaches an authenticated user to the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the authenticated user attached by the access middleware.
func FromContext(ctx context.Context) *User {
	user, _ := ctx.Value(contextKey{}).(*User)
	return user
}
