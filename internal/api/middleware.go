package api

import (
	"context"
	"net/http"
	"strings"

	"learnhub/internal/apperrors"
	"learnhub/internal/auth"
	"learnhub/internal/shared"
)

// sessionCookie is the cookie carrying the session token.
const sessionCookie = "token"

type ctxKey int

const identityKey ctxKey = 0

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Role   string
}

// HasRole reports whether the identity satisfies any of the given roles.
// Admins satisfy every role check.
func (id Identity) HasRole(roles ...string) bool {
	if id.Role == shared.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// identityFrom returns the caller identity, if the request was
// authenticated.
func identityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// requireAuth rejects requests without a valid session cookie.
func requireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verifyCookie(tokens, r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			id := Identity{UserID: claims.UserID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

// optionalAuth attaches an identity when a valid session cookie is present
// and passes anonymous requests through untouched. An invalid token is
// treated the same as no token.
func optionalAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := verifyCookie(tokens, r); err == nil {
				id := Identity{UserID: claims.UserID, Role: claims.Role}
				r = r.WithContext(withIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireRoles rejects authenticated callers whose role is not in the list.
// Must run after requireAuth.
func requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identityFrom(r.Context())
			if !ok {
				writeError(w, r, apperrors.Auth("Authentication required. Please login."))
				return
			}
			if !id.HasRole(roles...) {
				writeError(w, r, apperrors.Forbidden(
					"access restricted to: "+strings.Join(roles, ", ")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyCookie(tokens *auth.TokenManager, r *http.Request) (*auth.Claims, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, apperrors.Auth("Authentication required. Please login.")
	}
	return tokens.Verify(cookie.Value)
}
