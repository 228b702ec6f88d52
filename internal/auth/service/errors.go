package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. The HTTP layer maps each kind to one
// status code.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a client-facing failure. Message is safe to show to callers;
// Fields carries per-field validation messages.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

var (
	ErrInvalidCredentials  = &Error{Kind: KindUnauthorized, Message: "Invalid credentials"}
	ErrInvalidRefreshToken = &Error{Kind: KindUnauthorized, Message: "Invalid refresh token"}
	ErrRefreshTokenMissing = &Error{Kind: KindValidation, Message: "Refresh token is required"}
	ErrUsernameTaken       = &Error{Kind: KindConflict, Message: "Username already exists"}
	ErrEmailTaken          = &Error{Kind: KindConflict, Message: "Email already exists"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrNoFieldsToUpdate    = &Error{Kind: KindValidation, Message: "No valid fields to update"}
	ErrRoleRequired        = &Error{Kind: KindValidation, Message: "Role is required"}
	ErrInvalidRole         = &Error{Kind: KindValidation, Message: "Role must be one of: user, moderator, admin"}
)

// ValidationError builds a KindValidation error carrying field messages.
func ValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation error", Fields: fields}
}

// KindOf reports the kind of err. Anything that is not a *Error is internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
