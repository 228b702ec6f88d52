package http

import (
	"net/http"

	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/httpx"
)

// AuthHandler serves the unauthenticated session endpoints under /api/auth.
type AuthHandler struct {
	Sessions *service.SessionService
	Dev      bool
}

// HandleRegister godoc
//
//	@Summary		Register a user
//	@Description	Creates an account. Role defaults to "user" when omitted.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	authsdk.UserResponse	"User registered successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation error"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Username or email already exists"
//	@Failure		429		{object}	authsdk.MessageResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Registration failed"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.Sessions.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err, "Registration failed", h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{
		Message: "User registered successfully",
		User:    toUser(u),
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies credentials and issues an access token and a refresh token.
//	@Description	Unknown usernames and wrong passwords produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Login successful"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation error"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	authsdk.MessageResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Login failed"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.Sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Login failed", h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message:      "Login successful",
		User:         toUser(res.User),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// HandleRefresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges a live refresh token for a new access token. When the
//	@Description	service rotates refresh tokens the reply also carries a new refresh
//	@Description	token and the presented one stops working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.TokenRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.RefreshResponse	"Token refreshed successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Refresh token is required"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid refresh token"
//	@Failure		429		{object}	authsdk.MessageResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Token refresh failed"
//	@Router			/api/auth/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.Sessions.Refresh(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, r, err, "Token refresh failed", h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		Message:      "Token refreshed successfully",
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes a refresh token. Unknown or already revoked tokens succeed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.TokenRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.MessageResponse	"Logged out successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Refresh token is required"
//	@Failure		429		{object}	authsdk.MessageResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Logout failed"
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.Sessions.Logout(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err, "Logout failed", h.Dev)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}
