package middleware

import (
	"context"
	"net/http"

	"github.com/peopledesk/peopledesk-backend/api/responses"
	"github.com/peopledesk/peopledesk-backend/pkg/auth"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
)

// IdentityResolver turns a raw Authorization header into an actor identity.
// internal/auth.Service satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, authorizationHeader string) (auth.Identity, error)
}

// Auth resolves the bearer token and seeds the request context with the
// actor identity. The resolver owns the Missing/Malformed/Expired/Invalid
// distinctions; this layer only transports them.
func Auth(resolver IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    identity.ID.String(),
					"actor_role": string(identity.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
