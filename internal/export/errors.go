package export

import (
	"context"
	"errors"

	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/sheets"
)

var (
	// ErrIntegrity marks hierarchy data the pipeline cannot repair, such as
	// an entity without an id or a child listed under two parents.
	ErrIntegrity = errors.New("hierarchy integrity fault")

	// ErrPartialWrite is returned when some of the final writes landed and
	// at least one failed. Landed writes are not rolled back.
	ErrPartialWrite = errors.New("partial write")

	// ErrNoDocument is returned when no document of the version targets the
	// requested spreadsheet.
	ErrNoDocument = errors.New("no document targets this spreadsheet")
)

type FailureKind string

const (
	FailureIntegrity     FailureKind = "integrity"
	FailureAuthorization FailureKind = "authorization"
	FailurePermission    FailureKind = "permission"
	FailureNotFound      FailureKind = "not_found"
	FailureAPI           FailureKind = "api"
	FailurePartialWrite  FailureKind = "partial_write"
	FailureCanceled      FailureKind = "canceled"
	FailureInternal      FailureKind = "internal"
)

// Failure is the user-facing classification of an export error.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// Classify maps an error to a Failure. Authorization problems are checked
// before API status classes so a rejected token never reads as a 403.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	out := &Failure{Err: err}
	var apiErr *sheets.APIError
	switch {
	case errors.Is(err, ErrPartialWrite):
		out.Kind = FailurePartialWrite
		out.Message = "Some sheet writes failed after others succeeded; the spreadsheet may be incomplete: " + apiMessage(err)
	case errors.Is(err, auth.ErrConsentBlocked):
		out.Kind = FailureAuthorization
		out.Message = "Authorization blocked: the consent step could not be opened. Allow it and retry."
	case errors.Is(err, auth.ErrConsentDenied):
		out.Kind = FailureAuthorization
		out.Message = "Authorization denied: access to Google Sheets was not granted."
	case errors.Is(err, auth.ErrAuthorization), errors.Is(err, sheets.ErrUnauthenticated):
		out.Kind = FailureAuthorization
		out.Message = "Google authorization expired or was rejected. Sign in again and retry."
	case errors.Is(err, ErrIntegrity):
		out.Kind = FailureIntegrity
		out.Message = err.Error()
	case errors.Is(err, sheets.ErrPermissionDenied):
		out.Kind = FailurePermission
		out.Message = "Permission denied on the spreadsheet: " + apiMessage(err)
	case errors.Is(err, sheets.ErrNotFound):
		out.Kind = FailureNotFound
		out.Message = "Spreadsheet or range not found: " + apiMessage(err)
	case errors.Is(err, ErrNoDocument), errors.Is(err, repository.ErrNotFound):
		out.Kind = FailureNotFound
		out.Message = err.Error()
	case errors.As(err, &apiErr):
		out.Kind = FailureAPI
		out.Message = apiErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Kind = FailureCanceled
		out.Message = "Export interrupted: " + err.Error()
	default:
		out.Kind = FailureInternal
		out.Message = err.Error()
	}
	return out
}

// apiMessage prefers the endpoint's own message over the wrapped chain.
func apiMessage(err error) string {
	var apiErr *sheets.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
