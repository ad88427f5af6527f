// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// LoginRoute is where an expired session is sent.
const LoginRoute = "/auth/login"

// ErrAuthExpired means the backend rejected the bearer token. The session
// has already been cleared by the time a caller sees it.
type ErrAuthExpired struct {
	LoginRoute string
}

func (e *ErrAuthExpired) Error() string {
	return "session expired, please log in again"
}

func NewAuthExpired() error {
	return &ErrAuthExpired{LoginRoute: LoginRoute}
}

// IsAuthExpired reports whether err is or wraps an ErrAuthExpired.
func IsAuthExpired(err error) bool {
	var target *ErrAuthExpired
	return errors.As(err, &target)
}

// APIError is a non-success answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// ErrMalformedResponse means a 2xx body did not match the expected shape.
type ErrMalformedResponse struct {
	Endpoint string
	Reason   string
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// ValidationError is raised before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// UserMessage picks the text shown to the user for err, falling back to
// fallback when the error carries nothing better.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if IsAuthExpired(err) {
		return err.Error()
	}
	return fallback
}

// ErrBatchRunNotFound is returned by the ledger for unknown run ids.
type ErrBatchRunNotFound struct {
	RunID string
}

func (e *ErrBatchRunNotFound) Error() string {
	return fmt.Sprintf("batch run %s not found", e.RunID)
}

func NewBatchRunNotFound(id string) error {
	return &ErrBatchRunNotFound{RunID: id}
}
