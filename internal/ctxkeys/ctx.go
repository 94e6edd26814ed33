package ctxkeys

import (
	"context"

	"github.com/taskhive/taskhive/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	userKey contextKey = "user"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
