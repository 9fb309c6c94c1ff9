package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/sheets"
)

func TestClassify(t *testing.T) {
	forbidden := &sheets.APIError{Op: "write", Code: http.StatusForbidden, Message: "The caller does not have permission"}
	missing := &sheets.APIError{Op: "clear", Code: http.StatusNotFound, Message: "Requested entity was not found."}
	quota := &sheets.APIError{Op: "write", Code: http.StatusTooManyRequests, Message: "Quota exceeded"}
	rejected := &sheets.APIError{Op: "read", Code: http.StatusUnauthorized, Message: "Invalid Credentials"}

	cases := []struct {
		name     string
		err      error
		kind     FailureKind
		contains string
	}{
		{"integrity", fmt.Errorf("fetching: %w", ErrIntegrity), FailureIntegrity, "integrity"},
		{"blocked consent", fmt.Errorf("authorizing: %w", auth.ErrConsentBlocked), FailureAuthorization, "Authorization blocked"},
		{"denied consent", auth.ErrConsentDenied, FailureAuthorization, "denied"},
		{"rejected token", rejected, FailureAuthorization, "Sign in again"},
		{"permission", fmt.Errorf("writing: %w", forbidden), FailurePermission, "does not have permission"},
		{"not found", missing, FailureNotFound, "was not found"},
		{"no document", fmt.Errorf("%w: sheet-9", ErrNoDocument), FailureNotFound, "sheet-9"},
		{"store not found", repository.ErrNotFound, FailureNotFound, "not found"},
		{"other api", quota, FailureAPI, "Quota exceeded"},
		{"partial", fmt.Errorf("%w: 2 of 3 writes landed: %w", ErrPartialWrite, forbidden), FailurePartialWrite, "does not have permission"},
		{"canceled", fmt.Errorf("clearing: %w", context.Canceled), FailureCanceled, "interrupted"},
		{"internal", errors.New("boom"), FailureInternal, "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Classify(tc.err)
			require.NotNil(t, f)
			assert.Equal(t, tc.kind, f.Kind)
			assert.Contains(t, f.Message, tc.contains)
			assert.ErrorIs(t, f, tc.err)
		})
	}
}

func TestClassify_NilAndAlreadyClassified(t *testing.T) {
	assert.Nil(t, Classify(nil))

	f := &Failure{Kind: FailureIntegrity, Message: "x"}
	assert.Same(t, f, Classify(fmt.Errorf("wrapped: %w", f)))
}
