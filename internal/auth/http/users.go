package http

import (
	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/pkg/authsdk"
)

// toUser is the public projection of a stored user.
func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
