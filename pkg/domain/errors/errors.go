package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// requested entity is not found.
	ErrMissing = errors.New("missing")

	// more entities are found than expected.
	ErrTooMuch = errors.New("too much")

	// the operation would move something to a state it cannot reach from the current one.
	ErrInvalidStateChange = errors.New("invalid state change")

	// the operation collides with other work in progress (e.g. a pending change request).
	ErrConflict = errors.New("conflict")

	// the acting user is not allowed to do the operation.
	ErrForbidden = errors.New("forbidden")

	// the request itself is malformed or incomplete.
	ErrValidation = errors.New("validation failed")
)

// ValidationError lists problems per field.
//
// It unwraps to ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a problem of the field. The first problem for a field wins.
func (v *ValidationError) Add(field, problem string) {
	if _, ok := v.Fields[field]; ok {
		return
	}
	v.Fields[field] = problem
}

// OrNil returns nil when no problem is recorded.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, v.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

func (v *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidStateChange describes a rejected transition.
func InvalidStateChange(subject string, from, to fmt.Stringer) error {
	return fmt.Errorf("%w: %s: %s -> %s", ErrInvalidStateChange, subject, from, to)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrForbidden with a reason.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
