package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aurorains/insurance-platform/internal/core"
	"github.com/aurorains/insurance-platform/pkg/problem"
)

type sessionKey struct{}

// SessionFrom returns the authenticated session placed on the context by
// RequireSession, if any.
func SessionFrom(ctx context.Context) (core.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(core.Session)
	return s, ok
}

// RequireSession authenticates the Bearer token against the session store
// and attaches the session to the request context. Sessions are explicit
// server-side state; there is no ambient client-held identity.
func RequireSession(auth core.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				problem.Write(w, http.StatusUnauthorized, "Unauthorized", "Missing or expired session token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to the given roles. Must be mounted after
// RequireSession.
func RequireRole(roles ...core.Role) func(http.Handler) http.Handler {
	allowed := make(map[core.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				problem.Write(w, http.StatusUnauthorized, "Unauthorized", "No authenticated session")
				return
			}
			if !allowed[session.Role] {
				problem.Write(w, http.StatusForbidden, "Forbidden", "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
