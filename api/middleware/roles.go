package middleware

import (
	"net/http"

	"github.com/merthanaya/pos-backend/api/responses"
	"github.com/merthanaya/pos-backend/internal/auth"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/types"
)

// RequireAuth rejects anonymous callers and deactivated accounts.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return guard(auth.RequireAuth, logg)
}

// RequireAdmin additionally requires the admin role.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return guard(auth.RequireAdmin, logg)
}

func guard(check func(*types.UserContext) error, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := check(UserFromContext(r.Context())); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
