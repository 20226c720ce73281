package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gautamkshah/wise-academy/internal/common"
	"github.com/gautamkshah/wise-academy/internal/common/security"
	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

// Authenticator requires a token already verified by jwtauth.Verifier and
// stores the caller's identity in the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		identity, err := security.IdentityFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		next.ServeHTTP(w, r.WithContext(security.WithIdentity(r.Context(), identity)))
	})
}

type UserResolver interface {
	Resolve(ctx context.Context, ref string) (*model.User, error)
}

// AdminOnly admits callers whose stored role is ADMIN. Must run after Authenticator.
func AdminOnly(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := security.IdentityFromContext(r.Context())
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
				return
			}
			user, err := users.Resolve(r.Context(), identity.Subject)
			if err != nil && !errors.Is(err, common.ErrNotFound) {
				common.RespondWithDomainError(w, err)
				return
			}
			if user == nil || user.Role != model.RoleAdmin {
				common.RespondWithError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
