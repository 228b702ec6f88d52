package service

import (
	"regexp"

	"github.com/202201638/security-project/internal/auth/domain"
)

// emailPart excludes "@" and all Unicode space separators, not only the ASCII
// whitespace RE2 matches with \s.
const emailPart = `[^\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}@]+`

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
	emailRe    = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)

	// RE2 has no lookahead, so the character set and the three "at least
	// one of" rules are checked separately.
	passwordCharsRe   = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,}$`)
	passwordLetterRe  = regexp.MustCompile(`[A-Za-z]`)
	passwordDigitRe   = regexp.MustCompile(`\d`)
	passwordSpecialRe = regexp.MustCompile(`[@$!%*#?&]`)
)

const (
	msgUsernameRequired = "Username is required"
	msgUsernameFormat   = "Username must be alphanumeric and between 3-20 characters"
	msgEmailRequired    = "Email is required"
	msgEmailFormat      = "Invalid email format"
	msgPasswordRequired = "Password is required"
	msgPasswordFormat   = "Password must be at least 8 characters with at least 1 number and 1 special character"
	msgPasswordTooLong  = "Password is too long"
)

func validUsername(s string) bool { return usernameRe.MatchString(s) }
func validEmail(s string) bool    { return emailRe.MatchString(s) }

func validPassword(s string) bool {
	return passwordCharsRe.MatchString(s) &&
		passwordLetterRe.MatchString(s) &&
		passwordDigitRe.MatchString(s) &&
		passwordSpecialRe.MatchString(s)
}

func roleMessage() string {
	return "Role must be one of: " + domain.RoleNames()
}

// validateRegistration returns per-field messages; an empty map means valid.
// The returned role is RoleUser when none was given.
func validateRegistration(in RegisterInput) (domain.Role, map[string]string) {
	errs := map[string]string{}

	switch {
	case in.Username == "":
		errs["username"] = msgUsernameRequired
	case !validUsername(in.Username):
		errs["username"] = msgUsernameFormat
	}

	switch {
	case in.Email == "":
		errs["email"] = msgEmailRequired
	case !validEmail(in.Email):
		errs["email"] = msgEmailFormat
	}

	switch {
	case in.Password == "":
		errs["password"] = msgPasswordRequired
	case !validPassword(in.Password):
		errs["password"] = msgPasswordFormat
	}

	role := domain.RoleUser
	if in.Role != "" {
		r, err := domain.ParseRole(in.Role)
		if err != nil {
			errs["role"] = roleMessage()
		} else {
			role = r
		}
	}

	return role, errs
}

func validateLogin(username, password string) map[string]string {
	errs := map[string]string{}
	if username == "" {
		errs["username"] = msgUsernameRequired
	}
	if password == "" {
		errs["password"] = msgPasswordRequired
	}
	return errs
}

// validateProfileUpdate only checks the fields that were provided. Empty
// strings count as not provided.
func validateProfileUpdate(in ProfileUpdate) map[string]string {
	errs := map[string]string{}
	if in.Email != nil && *in.Email != "" && !validEmail(*in.Email) {
		errs["email"] = msgEmailFormat
	}
	if in.Password != nil && *in.Password != "" && !validPassword(*in.Password) {
		errs["password"] = msgPasswordFormat
	}
	return errs
}

func parseRoleInput(role string) (domain.Role, error) {
	if role == "" {
		return 0, ErrRoleRequired
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return 0, ErrInvalidRole
	}
	return r, nil
}
