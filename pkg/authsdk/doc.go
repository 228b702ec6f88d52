/*
Package authsdk provides a client SDK for the credential and session service.

# Overview

The package is organized around two types:

  - SDKClient: unauthenticated operations (register, login, refresh, logout,
    health) and the entry point for creating Sessions
  - Session: operations that need a bearer access token, with automatic
    token refresh

Create an SDKClient and log in to obtain a Session:

	client := authsdk.NewSDKClient("https://auth.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Passw0rd!",
	})

	session, err := client.Login(ctx, "alice", "Passw0rd!")

	profile, err := session.Profile(ctx)

# Automatic Token Refresh

Access tokens are short lived. When the service answers a Session request
with 401 "Token expired", the Session exchanges its refresh token for a new
access token and replays the request once. Concurrent callers share a single
refresh. If the service rotates refresh tokens the Session stores the new
one.

# Roles

Accounts hold one of three roles: user, moderator and admin. Session.Moderator
and Session.Admin call role gated endpoints; Session.UpdateUserRole requires an
admin session.

# Error Handling

Every non-2xx reply is returned as an *APIError carrying the status code, the
service message, per-field validation errors and, when the service runs in
dev mode, the underlying error details:

	_, err := client.Login(ctx, "alice", "wrong")
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		fmt.Println(apiErr.Message) // "Invalid credentials"
	}

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
