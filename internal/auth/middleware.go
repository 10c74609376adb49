package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
)

// CookieName is the cookie holding the session token.
const CookieName = "token"

type contextKey string

const identityKey contextKey = "identity"

var errNoIdentity = errors.New("auth: not signed in")

// RequireAuth rejects requests without a valid session cookie with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the identity when a valid cookie is present and lets
// anonymous requests through untouched. A nil TokenService (auth disabled)
// makes every request anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens != nil {
				if id, err := extractIdentity(r, tokens); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id access.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity set by the middleware.
func IdentityFromContext(ctx context.Context) (access.Identity, bool) {
	id, ok := ctx.Value(identityKey).(access.Identity)
	return id, ok && id.UserID != ""
}

// ContextIdentity is the access.IdentityProvider backed by the request
// context.
var ContextIdentity = access.IdentityFunc(func(ctx context.Context) (access.Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return access.Identity{}, errNoIdentity
	}
	return id, nil
})

func extractIdentity(r *http.Request, tokens *TokenService) (access.Identity, error) {
	if tokens == nil {
		return access.Identity{}, errNoIdentity
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return access.Identity{}, err
	}
	return tokens.Validate(cookie.Value)
}
