package sheets

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrPermissionDenied is matched by API errors with HTTP status 403.
	ErrPermissionDenied = errors.New("spreadsheet permission denied")

	// ErrNotFound is matched by API errors with HTTP status 404.
	ErrNotFound = errors.New("spreadsheet or range not found")

	// ErrUnauthenticated is matched by API errors with HTTP status 401.
	ErrUnauthenticated = errors.New("spreadsheet access token rejected")
)

// APIError carries the HTTP status and the endpoint's own message.
type APIError struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sheets %s: HTTP %d", e.Op, e.Code)
	}
	return fmt.Sprintf("sheets %s: HTTP %d: %s", e.Op, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets callers test the status class with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrPermissionDenied:
		return e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthenticated:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

// wrapAPIError converts a googleapi error into an *APIError and wraps any
// other error with the operation name.
func wrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{Op: op, Code: gerr.Code, Message: gerr.Message, Err: err}
	}
	return fmt.Errorf("sheets %s: %w", op, err)
}
