package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of privilege levels an account can hold.
type Role uint8

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

// ErrUnknownRole is returned when a string does not name a known role.
var ErrUnknownRole = errors.New("domain: unknown role")

var roleNames = [...]string{
	RoleUser:      "user",
	RoleModerator: "moderator",
	RoleAdmin:     "admin",
}

// Roles lists every role in ascending order of privilege.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// ParseRole maps the wire/storage name of a role onto a Role. Matching is
// case-sensitive so stored values stay canonical.
func ParseRole(s string) (Role, error) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), nil
		}
	}
	return 0, ErrUnknownRole
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool { return int(r) < len(roleNames) }

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleNames returns the comma separated list used in validation messages.
func RoleNames() string {
	return strings.Join(roleNames[:], ", ")
}
