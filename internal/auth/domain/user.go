package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id PHC string or bcrypt digest
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries the mutable fields of a user. Nil fields are left as-is.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.PasswordHash == nil && u.Role == nil
}
