package http

import (
	"net/http"

	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/httpx"
)

type RolesHandler struct {
	Users *service.UserService
	Dev   bool
}

// ServeHTTP handles the role change endpoint.
//
//	@Summary		Change a user's role
//	@Description	Sets the role of the user identified by id. Admin only. Tokens already
//	@Description	issued to that user keep their old role until they expire.
//	@Tags			Roles
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User id"
//	@Param			body	body		authsdk.UpdateRoleRequest	true	"New role"
//	@Success		200		{object}	authsdk.UserResponse		"User role updated successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Role is required or invalid"
//	@Failure		401		{object}	authsdk.MessageResponse		"Authentication required or token expired"
//	@Failure		403		{object}	authsdk.MessageResponse		"Admin access required"
//	@Failure		404		{object}	authsdk.ErrorResponse		"User not found"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Failed to update user role"
//	@Router			/api/users/{id}/role [put].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.Users.UpdateRole(r.Context(), r.PathValue("id"), req.Role)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update user role", h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		Message: "User role updated successfully",
		User:    toUser(u),
	})
}
