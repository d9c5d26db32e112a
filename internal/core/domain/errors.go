package domain

import (
	"errors"
	"fmt"
)

// Workflow precondition failures. They never reach a remote service.
var (
	ErrNoFileSelected   = errors.New("no file selected")
	ErrNoItemSelected   = errors.New("no experiment selected")
	ErrInvalidSelection = errors.New("invalid experiment selection")
)

// Boundary failures seen by the client.
var (
	ErrBoundaryRejected = errors.New("boundary rejected request")
	ErrTransportFailure = errors.New("boundary transport failure")
)

// Service-side failures.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoExperiments     = errors.New("no experiments found")
	ErrTemporary         = errors.New("temporary failure")
)

// BoundaryError is a non-success response from a remote service. Detail is
// the human-readable message the service supplied, if any.
type BoundaryError struct {
	Operation  string
	StatusCode int
	Detail     string
}

func (e *BoundaryError) Error() string {
	if e == nil {
		return "boundary error"
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Detail)
}

func (e *BoundaryError) Unwrap() error { return ErrBoundaryRejected }

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
