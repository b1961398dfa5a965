package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-user-accounts/internal/domain"
	"go.uber.org/zap"
)

// Token headers read from requests and, after a rotation, written to responses.
const (
	HeaderAccessToken  = "accesstoken"
	HeaderRefreshToken = "refreshtoken"
)

type contextKey string

const identityKey contextKey = "identity"

type authorizer interface {
	Authorize(ctx context.Context, accessToken, refreshToken string) (*domain.Identity, error)
}

// Auth resolves the caller's identity from the token headers and stores it in
// the request context. Rotated tokens are returned in the same headers.
func Auth(guard authorizer, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := guard.Authorize(r.Context(),
				r.Header.Get(HeaderAccessToken),
				r.Header.Get(HeaderRefreshToken),
			)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					writeJSONError(w, http.StatusUnauthorized, err.Error())
					return
				}
				log.Error("auth guard failed", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if identity.Rotated {
				w.Header().Set(HeaderAccessToken, identity.AccessToken)
				w.Header().Set(HeaderRefreshToken, identity.RefreshToken)
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the identity set by Auth.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*domain.Identity)
	return id, ok && id != nil
}
