package middleware

import (
	"net/http"

	"github.com/peopledesk/peopledesk-backend/api/responses"
	"github.com/peopledesk/peopledesk-backend/pkg/auth"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
)

func requirePredicate(check func(auth.Identity) bool, message string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || !check(identity) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff gates dashboard routes to employee and admin actors.
func RequireStaff(logg *logger.Logger) func(http.Handler) http.Handler {
	return requirePredicate(auth.IsStaff, "dashboard access required", logg)
}

// RequireAdmin gates management routes to admin actors.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requirePredicate(auth.IsAdmin, "admin access required", logg)
}
