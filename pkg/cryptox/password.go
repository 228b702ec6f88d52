package cryptox

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPasswordMismatch is returned by Verify when the plaintext does not
	// produce the stored digest.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrInvalidHash is returned when a stored digest cannot be parsed.
	ErrInvalidHash = errors.New("invalid hash format")

	// ErrPasswordTooLong is returned by hashers with an input length limit.
	ErrPasswordTooLong = errors.New("password too long")
)

// Hasher turns passwords into salted one-way digests and checks candidates
// against them. Hash is non-deterministic; Verify compares in constant time
// and returns nil only on a match.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) error
}

// Hasher names accepted by NewHasher.
const (
	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

// NewHasher builds the named hasher. The pepper only applies to argon2id.
func NewHasher(name, pepper string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", HasherArgon2id:
		return NewArgon2Hasher(pepper), nil
	case HasherBcrypt:
		return NewBcryptHasher(bcryptCost)
	default:
		return nil, fmt.Errorf("cryptox: unknown password hasher %q", name)
	}
}
