package parallel

import (
	"errors"
	"fmt"

	"github.com/sells-group/itemmatch/internal/resilience"
)

// ErrorKind is the closed set of provider failure classes. Callers branch on
// kinds, never on error message text.
type ErrorKind string

const (
	// ErrorKindAuth means the API rejected the credential (401/403).
	ErrorKindAuth ErrorKind = "auth"
	// ErrorKindTransient covers rate limits, 5xx, and network blips.
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindMalformed means the API responded but the body was
	// undecodable.
	ErrorKindMalformed ErrorKind = "malformed"
	// ErrorKindRequest is any other request failure.
	ErrorKindRequest ErrorKind = "request"
)

// APIError is a classified provider failure.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("parallel: %s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("parallel: %s error: %v", e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(kind ErrorKind, statusCode int, err error) *APIError {
	return &APIError{Kind: kind, StatusCode: statusCode, Err: err}
}

// classifyStatus maps an HTTP status to an error kind.
func classifyStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorKindAuth
	case resilience.IsTransientHTTPStatus(statusCode):
		return ErrorKindTransient
	default:
		return ErrorKindRequest
	}
}

// KindOf extracts the failure kind from an error chain. Errors that never
// passed through this package report ErrorKindRequest.
func KindOf(err error) ErrorKind {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if resilience.IsTransient(err) {
		return ErrorKindTransient
	}
	return ErrorKindRequest
}

// IsAuth reports whether the error is a credential rejection.
func IsAuth(err error) bool {
	return KindOf(err) == ErrorKindAuth
}
