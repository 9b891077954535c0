package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the base error for unexpected responses from the docforge
// server, carrying the status code and the server-provided message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// ValidationError indicates bad user input (400). Recoverable locally;
// shown inline, never fatal.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// AuthExpiredError indicates the session could not be refreshed. The
// client destroys the session before returning it; callers redirect to
// login rather than surfacing it raw.
type AuthExpiredError struct {
	Reason string
}

func (e *AuthExpiredError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("session expired: %s", e.Reason)
	}
	return "session expired"
}

// ConflictError indicates an operation was attempted in an illegal state,
// e.g. starting a generation while one is already active.
type ConflictError struct {
	Op     string
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s conflicts with current state: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("conflict: %s", e.Reason)
}

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NetworkError indicates the server could not be reached at all. It is
// transient; callers may retry manually.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// errorBody is the JSON error envelope the server uses.
type errorBody struct {
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (b errorBody) message() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Detail
}

// classifyStatus maps a non-2xx response to the error taxonomy. 401 is
// not handled here; the client deals with it through the refresh flow.
func classifyStatus(resource string, status int, body []byte) error {
	var envelope errorBody
	_ = json.Unmarshal(body, &envelope)
	message := envelope.message()

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Field: envelope.Field, Message: message}
	case http.StatusNotFound:
		return &NotFoundError{Resource: resource}
	case http.StatusConflict:
		return &ConflictError{Reason: message}
	default:
		return &APIError{StatusCode: status, Message: message}
	}
}
