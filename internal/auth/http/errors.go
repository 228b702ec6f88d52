package http

import (
	"errors"
	"net/http"

	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/httpx"
	"github.com/202201638/security-project/pkg/slogx"
)

const msgInvalidRequestBody = "Invalid request body"

// statusFor maps an error kind onto its HTTP status.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err as an ErrorResponse. Anything that is not a
// *service.Error is logged and answered with 500 and the fallback message;
// its text is only exposed in dev.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, dev bool) {
	var se *service.Error
	if errors.As(err, &se) && se.Kind != service.KindInternal {
		httpx.WriteJSON(w, statusFor(se.Kind), authsdk.ErrorResponse{
			Message: se.Message,
			Errors:  se.Fields,
		})
		return
	}

	slogx.FromContext(r.Context()).Error(fallback, "error", err)

	resp := authsdk.ErrorResponse{Message: fallback}
	if dev {
		resp.Details = err.Error()
	}
	httpx.WriteJSON(w, http.StatusInternalServerError, resp)
}

// decodeBody decodes the JSON request body into v. An absent body leaves v at
// its zero value so field validation reports what is missing. On failure it
// writes the 400 reply and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := httpx.DecodeJSON(r, v)
	if err == nil || errors.Is(err, httpx.ErrEmptyBody) {
		return true
	}

	slogx.FromContext(r.Context()).Debug("invalid request body", "error", err)
	httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRequestBody)
	return false
}
