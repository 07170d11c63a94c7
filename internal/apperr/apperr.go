// Package apperr defines the error taxonomy surfaced by the service layer.
// Handlers translate these with errors.Is into HTTP statuses; everything
// else is treated as an upstream failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the referenced client or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the actor's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: the optimistic-concurrency precondition failed after
	// the single retry.
	ErrConflict = errors.New("conflict")
	// ErrValidation: required field missing or malformed before any write.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream: the backing store or a downstream service failed.
	// Distinct from the others so the UI can offer a retry instead of
	// asking the user to correct input.
	ErrUpstream = errors.New("upstream unavailable")
)

// NotFound wraps ErrNotFound with the entity description.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// Validation wraps ErrValidation with the failing field.
func Validation(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

// Upstream wraps a store or downstream failure.
func Upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
