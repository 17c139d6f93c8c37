package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/worklane/worklane/internal/domain/user"
)

type identityCtxKey struct{}

// Identity header names set by the authenticating gateway. Worklane does not
// validate credentials itself; the gateway strips any client-supplied copies
// of these headers before forwarding.
const (
	headerUserID   = "X-User-ID"
	headerUserName = "X-User-Name"
	headerUserRole = "X-User-Role"
)

// publicPaths are exempt from identity extraction.
var publicPaths = map[string]bool{
	"/health": true,
	"/ws":     true,
}

// Identity returns middleware that builds the acting user from gateway
// headers. Requests without a user id are rejected with 401.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			id := strings.TrimSpace(r.Header.Get(headerUserID))
			if id == "" {
				http.Error(w, `{"error":"identity required"}`, http.StatusUnauthorized)
				return
			}

			role := user.Role(strings.TrimSpace(r.Header.Get(headerUserRole)))
			if !user.ValidRoles[role] {
				role = user.RoleUser
			}

			u := &user.User{
				ID:   id,
				Name: r.Header.Get(headerUserName),
				Role: role,
			}
			ctx := context.WithValue(r.Context(), identityCtxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the acting user stored by Identity, or nil.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(identityCtxKey{}).(*user.User)
	return u
}
