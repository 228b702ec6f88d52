package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/202201638/security-project/pkg/jwtx"
	"github.com/202201638/security-project/pkg/slogx"
)

// Guard messages. Clients branch on "Token expired" to decide whether to
// refresh.
const (
	MsgAuthenticationRequired = "Authentication required"
	MsgTokenExpired           = "Token expired"
	MsgInvalidToken           = "Invalid token"
)

// AuthnMiddleware requires a valid access token in the Authorization header.
//
//   - no token: 401 "Authentication required"
//   - genuine but expired token: 401 "Token expired"
//   - anything else (forged, malformed, wrong type): 403 "Invalid token"
//
// v must reject tokens whose signature does not verify before it reports
// expiry, otherwise forged tokens would be told to refresh.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				WriteMessage(w, http.StatusUnauthorized, MsgAuthenticationRequired)
				return
			}

			claims, err := v.Verify(raw)
			switch {
			case errors.Is(err, jwtx.ErrExpired):
				WriteMessage(w, http.StatusUnauthorized, MsgTokenExpired)
				return
			case err != nil:
				log.Warn("jwt verify failed", "err", err)
				WriteMessage(w, http.StatusForbidden, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

// bearerToken extracts the credential from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
