package cases

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that no case exists for the requested identifier.
	ErrNotFound = errors.New("cases: not found")
	// ErrInvalidState signals that the operation is not allowed for the case's current status.
	ErrInvalidState = errors.New("cases: invalid state")
	// ErrValidation signals malformed input. The HTTP layer raises it; the service never does.
	ErrValidation = errors.New("cases: validation failed")
	// ErrStatusConflict is returned by SaveIfStatus when the stored status no longer matches.
	ErrStatusConflict = errors.New("cases: status changed concurrently")
	// ErrInvalidRecord is returned by every repository for a case that breaks
	// the expert/status pairing or carries an unknown status.
	ErrInvalidRecord = errors.New("cases: invalid record")
)

// Error carries a human readable message alongside one of the sentinel kinds.
// errors.Is matches against Kind.
type Error struct {
	Kind    error
	CaseID  string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(caseID string) error {
	return &Error{
		Kind:    ErrNotFound,
		CaseID:  caseID,
		Message: fmt.Sprintf("case %q not found", caseID),
	}
}

func notAssignable(caseID string, status Status) error {
	return &Error{
		Kind:    ErrInvalidState,
		CaseID:  caseID,
		Message: fmt.Sprintf("case %q is in %q status and cannot be assigned", caseID, status),
	}
}

// NewValidationError builds a validation failure for input received at the boundary.
func NewValidationError(caseID, message string) error {
	return &Error{
		Kind:    ErrValidation,
		CaseID:  caseID,
		Message: message,
	}
}

// Message returns the user facing text of a classified error, or false for
// anything outside the taxonomy.
func Message(err error) (string, bool) {
	var caseErr *Error
	if errors.As(err, &caseErr) {
		return caseErr.Message, true
	}
	return "", false
}
