package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Messages the server uses for bearer token failures.
const (
	MessageAuthenticationRequired = "Authentication required"
	MessageTokenExpired           = "Token expired"
	MessageInvalidToken           = "Invalid token"
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string]string
	Details    string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%d %s: %v", e.StatusCode, e.Message, e.Errors)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// TokenExpired reports whether the server rejected the access token because
// it has expired.
func (e *APIError) TokenExpired() bool {
	return e.StatusCode == http.StatusUnauthorized && e.Message == MessageTokenExpired
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// parseErrorResponse turns a non-2xx reply into an *APIError. Bodies that are
// not the service's error shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
			Errors:     errResp.Errors,
			Details:    errResp.Details,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
