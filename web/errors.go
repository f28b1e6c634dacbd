package web

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func errInvalidParameter(param, value string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "INVALID_PARAMETER",
		Message:    "invalid value for " + param,
		Details:    map[string]string{"parameter": param, "value": value},
	}
}

func errValidation(details any) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  "VALIDATION_FAILED",
		Message:    "request validation failed",
		Details:    details,
	}
}

func errInternal(message string) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  "INTERNAL_ERROR",
		Message:    message,
	}
}
