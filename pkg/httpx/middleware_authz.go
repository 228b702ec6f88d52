package httpx

import (
	"net/http"
	"slices"
)

// RequireAnyRole lets the request through only when the authenticated
// caller's role is one of roles; otherwise it answers 403 with message.
// It must run after AuthnMiddleware.
func RequireAnyRole(message string, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || !slices.Contains(roles, id.Role) {
				WriteMessage(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
