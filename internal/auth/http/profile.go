package http

import (
	"net/http"

	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/httpx"
)

type ProfileHandler struct {
	Users *service.UserService
	Dev   bool
}

// HandleGet godoc
//
//	@Summary		Get own profile
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"Profile retrieved successfully"
//	@Failure		401	{object}	authsdk.MessageResponse	"Authentication required or token expired"
//	@Failure		403	{object}	authsdk.MessageResponse	"Invalid token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User not found"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Failed to retrieve profile"
//	@Router			/api/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.GetProfile(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve profile", h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		Message: "Profile retrieved successfully",
		User:    toUser(u),
	})
}

// HandleUpdate godoc
//
//	@Summary		Update own profile
//	@Description	Changes email and/or password. At least one must be given.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.UserResponse			"Profile updated successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Validation error or no valid fields to update"
//	@Failure		401		{object}	authsdk.MessageResponse			"Authentication required or token expired"
//	@Failure		403		{object}	authsdk.MessageResponse			"Invalid token"
//	@Failure		404		{object}	authsdk.ErrorResponse			"User not found"
//	@Failure		409		{object}	authsdk.ErrorResponse			"Email already exists"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Failed to update profile"
//	@Router			/api/profile [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.Users.UpdateProfile(r.Context(), httpx.UserIDFromContext(r.Context()), service.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to update profile", h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		Message: "Profile updated successfully",
		User:    toUser(u),
	})
}
