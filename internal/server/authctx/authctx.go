package authctx

import (
	"context"

	"selfreg-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentAdmin"

type CurrentUser struct {
	ID       int64
	Username string
	Role     domain.AdminRole
}

func (u CurrentUser) Actor() domain.Actor {
	return domain.Actor{AdminID: u.ID, Username: u.Username, Role: u.Role}
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}

// ActorFrom returns the signed-in admin, or the zero Actor for anonymous requests.
func ActorFrom(ctx context.Context) domain.Actor {
	if u := FromContext(ctx); u != nil {
		return u.Actor()
	}
	return domain.Actor{}
}
