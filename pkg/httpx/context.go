package httpx

import (
	"context"

	"github.com/202201638/security-project/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// Identity is the authenticated caller as asserted by a verified access token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// ClaimsFromContext returns the verified claims AuthnMiddleware attached.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// IdentityFromContext returns the caller's id, username and role.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	return Identity{ID: c.Subject, Username: c.Username, Role: c.Role}, true
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyUserID).(string)
	return id
}
