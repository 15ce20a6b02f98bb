package middleware

import (
	"context"

	"github.com/merthanaya/pos-backend/pkg/types"
)

type contextKey string

const (
	ctxUser  contextKey = "user"
	ctxToken contextKey = "access_token"
)

// UserFromContext returns the resolved caller, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *types.UserContext {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxUser).(*types.UserContext); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return string(user.Role)
	}
	return ""
}

// TokenFromContext returns the bearer credential presented with the request.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxToken).(string); ok {
		return v
	}
	return ""
}

// WithUser injects the resolved caller into the context.
func WithUser(ctx context.Context, user *types.UserContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxToken, token)
}
