package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/merthanaya/pos-backend/internal/auth"
	"github.com/merthanaya/pos-backend/pkg/logger"
)

type resolver interface {
	Resolve(ctx context.Context, token string) auth.Resolution
}

// Identity resolves the bearer credential, if any, into a caller. It never rejects a request:
// every outcome other than Authenticated continues anonymously and route guards decide.
func Identity(gateway resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := BearerToken(r)
			if token == "" || gateway == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx = withToken(ctx, token)

			res := gateway.Resolve(ctx, token)
			switch res.Outcome {
			case auth.OutcomeAuthenticated:
				ctx = WithUser(ctx, res.User)
				if logg != nil {
					ctx = logg.WithUserID(ctx, res.User.ID.String())
					ctx = logg.WithActorRole(ctx, string(res.User.Role))
				}
			case auth.OutcomeUnavailable:
				if logg != nil {
					logg.Error(logg.WithField(ctx, "outcome", res.Outcome.String()), "auth.resolve_unavailable", res.Err)
				}
			case auth.OutcomeRejected:
				if logg != nil {
					logg.Debug(ctx, "auth.token_rejected")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the credential from the Authorization header. A missing
// "Bearer " prefix is tolerated.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}
