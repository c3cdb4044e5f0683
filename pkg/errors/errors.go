package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code so Clone copies still compare equal to their base error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Review cycle domain errors. The messages are surfaced to end users verbatim
// and must not be reworded.
var (
	ErrCycleOverlap        = New("CYCLE_OVERLAP", http.StatusConflict, "Review cycle has already been created for the selected range")
	ErrActiveCycleConflict = New("ACTIVE_CYCLE_CONFLICT", http.StatusConflict, "Another Review Cycle is already active.")
	ErrDeadlinePassed      = New("DEADLINE_PASSED", http.StatusUnprocessableEntity, "submission deadline has passed")
	ErrNoActiveCycle       = New("NO_ACTIVE_CYCLE", http.StatusNotFound, "no active review cycle")
	ErrMissingWeightage    = New("MISSING_WEIGHTAGE", http.StatusUnprocessableEntity, "KRA weightage missing")
	ErrKRAWithoutKPI       = New("KRA_WITHOUT_KPI", http.StatusPreconditionFailed, "Every KRA must have at least one active KPI")
	ErrDesignationGap      = New("DESIGNATION_WITHOUT_KPI", http.StatusPreconditionFailed, "Every designation must have at least one KPI for each KRA")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
