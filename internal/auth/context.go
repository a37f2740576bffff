package auth

import (
	"context"

	"classifieds/models"
)

type callerKey struct{}

// WithCaller stores the authenticated user in context.
func WithCaller(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, callerKey{}, u)
}

// CallerFrom retrieves the authenticated user from context, or nil for anonymous requests.
func CallerFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(callerKey{}).(*models.User)
	return u
}
