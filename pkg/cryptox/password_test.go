package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testHashers returns every hasher with cheap settings so the suite stays fast.
func testHashers(t *testing.T) map[string]Hasher {
	t.Helper()

	bc, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	return map[string]Hasher{
		"argon2id": NewArgon2Hasher("test-pepper"),
		"bcrypt":   bc,
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	passwords := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for hname, h := range testHashers(t) {
		for _, tt := range passwords {
			t.Run(hname+"/"+tt.name, func(t *testing.T) {
				digest, err := h.Hash(tt.password)
				require.NoError(t, err)
				require.NotEmpty(t, digest)
				require.NotContains(t, digest, tt.password+"test-pepper")

				require.NoError(t, h.Verify(tt.password, digest))
			})
		}
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	for name, h := range testHashers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("samepassword")
			require.NoError(t, err)
			b, err := h.Hash("samepassword")
			require.NoError(t, err)

			require.NotEqual(t, a, b, "hashes should differ due to unique salts")
			require.NoError(t, h.Verify("samepassword", a))
			require.NoError(t, h.Verify("samepassword", b))
		})
	}
}

func TestHasher_WrongPassword(t *testing.T) {
	wrong := []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor", strings.Repeat("x", 10000)}

	for name, h := range testHashers(t) {
		digest, err := h.Hash("correct-password")
		require.NoError(t, err)

		for _, w := range wrong {
			t.Run(name+"/"+w[:min(len(w), 16)], func(t *testing.T) {
				require.ErrorIs(t, h.Verify(w, digest), ErrPasswordMismatch)
			})
		}
	}
}

func TestArgon2Hasher_PHCFormat(t *testing.T) {
	h := NewArgon2Hasher("pepper")
	digest, err := h.Hash("test-password")
	require.NoError(t, err)

	parts := strings.Split(digest, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=19456,t=2,p=1", parts[3])
	require.NotEmpty(t, parts[4])
	require.NotEmpty(t, parts[5])
}

func TestArgon2Hasher_PepperIsApplied(t *testing.T) {
	digest, err := NewArgon2Hasher("pepper-a").Hash("test-password")
	require.NoError(t, err)

	require.ErrorIs(t, NewArgon2Hasher("pepper-b").Verify("test-password", digest), ErrPasswordMismatch)
	require.NoError(t, NewArgon2Hasher("pepper-a").Verify("test-password", digest))
}

func TestArgon2Hasher_InvalidHashFormat(t *testing.T) {
	h := NewArgon2Hasher("")

	tests := []struct {
		name string
		hash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("test-password", tt.hash), ErrInvalidHash)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Run("default cost", func(t *testing.T) {
		h, err := NewBcryptHasher(0)
		require.NoError(t, err)
		require.Equal(t, DefaultBcryptCost, h.Cost)
	})

	t.Run("cost out of range", func(t *testing.T) {
		_, err := NewBcryptHasher(bcrypt.MaxCost + 1)
		require.Error(t, err)
	})

	t.Run("too long", func(t *testing.T) {
		h, err := NewBcryptHasher(bcrypt.MinCost)
		require.NoError(t, err)
		_, err = h.Hash(strings.Repeat("a", 73))
		require.ErrorIs(t, err, ErrPasswordTooLong)
	})

	t.Run("garbage digest", func(t *testing.T) {
		h, err := NewBcryptHasher(bcrypt.MinCost)
		require.NoError(t, err)
		require.ErrorIs(t, h.Verify("pw", "not-a-digest"), ErrInvalidHash)
	})
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", "p", 0)
	require.NoError(t, err)
	require.IsType(t, &Argon2Hasher{}, h)

	h, err = NewHasher("BCRYPT", "p", bcrypt.MinCost)
	require.NoError(t, err)
	require.IsType(t, &BcryptHasher{}, h)

	_, err = NewHasher("scrypt", "p", 0)
	require.Error(t, err)
}
