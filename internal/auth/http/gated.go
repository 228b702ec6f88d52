package http

import (
	"net/http"

	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/httpx"
)

const (
	msgProtected = "This is a protected endpoint. Only authenticated users can access it."
	msgModerator = "This is a moderator endpoint. Only moderators and admins can access it."
	msgAdmin     = "This is an admin endpoint. Only admins can access it."
	msgPublic    = "This is a public endpoint. Anyone can access it."

	msgAdminRequired     = "Admin access required"
	msgModeratorRequired = "Moderator or admin access required"
)

// IdentityHandler echoes the caller's token identity with message. It sits
// behind AuthnMiddleware and whatever role gate the route needs.
//
//	@Summary		Role gated demo endpoints
//	@Description	/api/protected accepts any role, /api/moderator moderators and admins,
//	@Description	/api/admin admins only.
//	@Tags			Demo
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.IdentityResponse	"Caller identity"
//	@Failure		401	{object}	authsdk.MessageResponse		"Authentication required or token expired"
//	@Failure		403	{object}	authsdk.MessageResponse		"Invalid token or insufficient role"
//	@Router			/api/protected [get]
//	@Router			/api/moderator [get]
//	@Router			/api/admin [get].
func IdentityHandler(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.IdentityFromContext(r.Context())
		if !ok {
			httpx.WriteMessage(w, http.StatusUnauthorized, httpx.MsgAuthenticationRequired)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.IdentityResponse{
			Message: message,
			User: authsdk.Identity{
				ID:       id.ID,
				Username: id.Username,
				Role:     id.Role,
			},
		})
	}
}

// PublicHandler godoc
//
//	@Summary	Public demo endpoint
//	@Tags		Demo
//	@Produce	json
//	@Success	200	{object}	authsdk.MessageResponse
//	@Router		/api/public [get].
func PublicHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteMessage(w, http.StatusOK, msgPublic)
}
