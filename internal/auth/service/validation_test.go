package service

import (
	"strings"
	"testing"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestValidPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"abcdefg1@", true},
		{"12345678a$", true},
		{"short1!", false},        // too short
		{"password1", false},      // no special
		{"password!", false},      // no digit
		{"12345678!", false},      // no letter
		{"Passw0rd! ", false},     // space not allowed
		{"Passw0rd!^", false},     // ^ not in the allowed set
		{"Pässw0rd!", false},      // non-ascii letter
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			require.Equal(t, tt.want, validPassword(tt.password))
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       RegisterInput
		wantErrs map[string]string
		wantRole domain.Role
	}{
		{
			name:     "valid with default role",
			in:       RegisterInput{Username: "alice", Email: "a@x.com", Password: "Passw0rd!"},
			wantErrs: map[string]string{},
			wantRole: domain.RoleUser,
		},
		{
			name:     "valid with explicit role",
			in:       RegisterInput{Username: "alice", Email: "a@x.com", Password: "Passw0rd!", Role: "moderator"},
			wantErrs: map[string]string{},
			wantRole: domain.RoleModerator,
		},
		{
			name: "everything missing",
			in:   RegisterInput{},
			wantErrs: map[string]string{
				"username": msgUsernameRequired,
				"email":    msgEmailRequired,
				"password": msgPasswordRequired,
			},
		},
		{
			name: "bad formats",
			in:   RegisterInput{Username: "al", Email: "not-an-email", Password: "weak", Role: "root"},
			wantErrs: map[string]string{
				"username": msgUsernameFormat,
				"email":    msgEmailFormat,
				"password": msgPasswordFormat,
				"role":     "Role must be one of: user, moderator, admin",
			},
		},
		{
			name:     "username too long",
			in:       RegisterInput{Username: strings.Repeat("a", 21), Email: "a@x.com", Password: "Passw0rd!"},
			wantErrs: map[string]string{"username": msgUsernameFormat},
		},
		{
			name:     "username with symbols",
			in:       RegisterInput{Username: "al_ice", Email: "a@x.com", Password: "Passw0rd!"},
			wantErrs: map[string]string{"username": msgUsernameFormat},
		},
		{
			name:     "email with vertical tab",
			in:       RegisterInput{Username: "alice", Email: "a\vb@x.com", Password: "Passw0rd!"},
			wantErrs: map[string]string{"email": msgEmailFormat},
		},
		{
			name:     "email with no-break space",
			in:       RegisterInput{Username: "alice", Email: "a\u00a0b@x.com", Password: "Passw0rd!"},
			wantErrs: map[string]string{"email": msgEmailFormat},
		},
		{
			name:     "email with em space in domain",
			in:       RegisterInput{Username: "alice", Email: "a@x\u2003y.com", Password: "Passw0rd!"},
			wantErrs: map[string]string{"email": msgEmailFormat},
		},
		{
			name:     "email with byte order mark",
			in:       RegisterInput{Username: "alice", Email: "a@x.co\ufeffm", Password: "Passw0rd!"},
			wantErrs: map[string]string{"email": msgEmailFormat},
		},
		{
			name:     "role is case-sensitive",
			in:       RegisterInput{Username: "alice", Email: "a@x.com", Password: "Passw0rd!", Role: "Admin"},
			wantErrs: map[string]string{"role": "Role must be one of: user, moderator, admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, errs := validateRegistration(tt.in)
			require.Equal(t, tt.wantErrs, errs)
			if len(tt.wantErrs) == 0 {
				require.Equal(t, tt.wantRole, role)
			}
		})
	}
}

func TestValidateProfileUpdate(t *testing.T) {
	t.Parallel()

	bad := "nope"
	empty := ""
	good := "b@y.org"
	weak := "password"
	nbsp := "a\u00a0b@x.com"

	require.Empty(t, validateProfileUpdate(ProfileUpdate{}))
	require.Empty(t, validateProfileUpdate(ProfileUpdate{Email: &empty, Password: &empty}))
	require.Empty(t, validateProfileUpdate(ProfileUpdate{Email: &good}))
	require.Equal(t, map[string]string{"email": msgEmailFormat, "password": msgPasswordFormat},
		validateProfileUpdate(ProfileUpdate{Email: &bad, Password: &weak}))
	require.Equal(t, map[string]string{"email": msgEmailFormat},
		validateProfileUpdate(ProfileUpdate{Email: &nbsp}))
}

func TestParseRoleInput(t *testing.T) {
	t.Parallel()

	r, err := parseRoleInput("admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, r)

	_, err = parseRoleInput("")
	require.ErrorIs(t, err, ErrRoleRequired)

	_, err = parseRoleInput("superuser")
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = parseRoleInput(" admin ")
	require.ErrorIs(t, err, ErrInvalidRole, "surrounding whitespace is not trimmed")
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"first.last@sub.example.org", true},
		{"ünï@x.com", true},
		{"a b@x.com", false},
		{"a\tb@x.com", false},
		{"a\u2028b@x.com", false},
		{"a@@x.com", false},
		{"a@xcom", false},
		{"@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			require.Equal(t, tt.want, validEmail(tt.email))
		})
	}
}
