package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the authentication service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates with username and password and returns a Session
// holding the issued token pair.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	loginResp, err := c.LoginRaw(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s := c.NewSessionFromTokens(loginResp.AccessToken, loginResp.RefreshToken)
	s.user = loginResp.User
	return s, nil
}

// NewSessionFromTokens creates an authenticated session from existing tokens.
// This is useful when tokens were obtained earlier and stored elsewhere.
// The session still refreshes the access token when the server reports it
// expired.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}
