package service

import (
	"time"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/pkg/jwtx"
)

// TokenService mints and checks the two kinds of JWT the service hands out.
// Verification is a pure function of the token, the secret and the clock.
type TokenService struct {
	Signer          jwtx.Signer
	AccessVerifier  jwtx.Verifier
	RefreshVerifier jwtx.Verifier
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	Now             func() time.Time
}

// NewTokenService builds an HS256 token service. Zero TTLs fall back to the
// jwtx defaults and a nil clock means time.Now.
func NewTokenService(secret []byte, issuer string, accessTTL, refreshTTL time.Duration, now func() time.Time) (*TokenService, error) {
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}
	if now == nil {
		now = time.Now
	}

	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	access, err := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{
		Issuer:    issuer,
		TokenType: jwtx.TokenTypeAccess,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	refresh, err := jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{
		Issuer:    issuer,
		TokenType: jwtx.TokenTypeRefresh,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}

	return &TokenService{
		Signer:          signer,
		AccessVerifier:  access,
		RefreshVerifier: refresh,
		Issuer:          issuer,
		AccessTTL:       accessTTL,
		RefreshTTL:      refreshTTL,
		Now:             now,
	}, nil
}

// IssueAccessToken signs a bearer token carrying the user's id, username and
// role.
func (s *TokenService) IssueAccessToken(userID, username string, role domain.Role) (string, error) {
	claims := jwtx.NewAccessClaims(userID, username, role.String(), s.Issuer, s.AccessTTL, s.Now())
	return s.Signer.Sign(claims)
}

// IssueRefreshToken signs a refresh token for userID and reports when it
// expires so the caller can persist a matching record.
func (s *TokenService) IssueRefreshToken(userID string) (string, time.Time, error) {
	claims := jwtx.NewRefreshClaims(userID, s.Issuer, s.RefreshTTL, s.Now())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAtTime(), nil
}

// VerifyAccessToken returns the claims of a valid access token.
// jwtx.ErrExpired is only returned for tokens whose signature checked out.
func (s *TokenService) VerifyAccessToken(token string) (jwtx.Claims, error) {
	return s.AccessVerifier.Verify(token)
}

// VerifyRefreshToken is VerifyAccessToken for refresh tokens.
func (s *TokenService) VerifyRefreshToken(token string) (jwtx.Claims, error) {
	return s.RefreshVerifier.Verify(token)
}
