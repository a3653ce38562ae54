package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	domerr "github.com/opre/ops/pkg/domain/errors"
)

// ErrorResponse is the body of error responses.
type ErrorResponse struct {
	Message ErrorMessage `json:"message"`
}

type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	See    string `json:"see,omitempty"`

	// Fields maps field names to their problems, for validation errors.
	Fields map[string]string `json:"fields,omitempty"`

	Cause error `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Reason *string           `json:"reason"`
		Advice *string           `json:"advice,omitempty"`
		See    *string           `json:"see,omitempty"`
		Fields map[string]string `json:"fields,omitempty"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}

	if f.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason = *f.Reason

	if f.Advice != nil {
		em.Advice = *f.Advice
	}
	if f.See != nil {
		em.See = *f.See
	}
	em.Fields = f.Fields
	return nil
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by:", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err == nil {
			return in
		}
		in.Cause = err
		if verr := new(domerr.ValidationError); errors.As(err, &verr) {
			in.Fields = verr.Fields
		}
		return in
	}
}

func WithSee(see string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if see != "" {
			in.See = see
		}
		return in
	}
}

// NewErrorMessage builds an error which echo renders as ErrorResponse.
func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	return echo.NewHTTPError(code, ErrorResponse{Message: msg}).SetInternal(msg)
}

// cause panic with error message.
//
// This get in echo's standard error handling pipeline (HTTPErrorHandler)
func Fatal(reason string, err error) {
	panic(NewErrorMessage(
		http.StatusInternalServerError, reason,
		WithAdvice("ask your system admin."), WithError(err),
	))
}

func ServiceUnavailable(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusServiceUnavailable,
		"service unavailable temporarily",
		WithAdvice(advice),
		WithError(err),
	)
}

func NotFound(options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found", options...)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func Unauthorized(advice string) *echo.HTTPError {
	return NewErrorMessage(http.StatusUnauthorized, "unauthorized", WithAdvice(advice))
}

func Forbidden(options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusForbidden, "forbidden", options...)
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusConflict,
		message,
		options...,
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}

// FromDomain translates errors of domain operations.
//
// - ErrValidation: 400
//
// - ErrForbidden: 403
//
// - ErrMissing: 404
//
// - ErrConflict, ErrInvalidStateChange: 409
//
// - others: 500
func FromDomain(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domerr.ErrValidation):
		return BadRequest("fix the request and retry.", err)
	case errors.Is(err, domerr.ErrForbidden):
		return Forbidden(WithError(err), WithAdvice("you are not allowed to do this."))
	case errors.Is(err, domerr.ErrMissing):
		return NotFound(WithError(err))
	case errors.Is(err, domerr.ErrInvalidStateChange):
		return Conflict("invalid state change", WithError(err))
	case errors.Is(err, domerr.ErrConflict):
		return Conflict("conflict", WithError(err), WithAdvice("wait for pending reviews, then retry."))
	default:
		return InternalServerError(err)
	}
}
