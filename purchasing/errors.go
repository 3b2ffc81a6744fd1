package purchasing

import (
	"errors"
	"fmt"
)

// ValidationError is a user-correctable failure. The operation that returned it
// left the session untouched.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

var (
	ErrNoProductSelected      = ValidationError{Reason: "no product selected"}
	ErrDuplicateProduct       = ValidationError{Reason: "duplicate product"}
	ErrNoLines                = ValidationError{Reason: "at least one product required"}
	ErrAmountPaidExceedsTotal = ValidationError{Reason: "amount paid exceeds total"}
	ErrNegativeValue          = ValidationError{Reason: "value must be 0 or more"}
	ErrUnknownSupplier        = ValidationError{Reason: "supplier not found"}
	ErrSessionNotReady        = ValidationError{Reason: "session not ready"}
	ErrSessionClosed          = ValidationError{Reason: "session closed"}
	ErrSubmitInProgress       = ValidationError{Reason: "submit already in progress"}
	ErrAlreadyInitialized     = ValidationError{Reason: "session already initialized"}
)

// ErrProductNotFound is returned by Catalog implementations for unknown or inactive products.
var ErrProductNotFound = errors.New("product not found")

// DependencyError wraps a failed catalog lookup or submit call.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// IndexError reports a line index outside the collection.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("line index %d out of range [0,%d)", e.Index, e.Length)
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func IsDependencyError(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}

func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}
