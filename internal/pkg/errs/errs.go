/*
Package errs provides custom error types and application-level error code constants.

This file defines CustomError, which implements the error interface and carries a
business code, a user-facing message, the HTTP status and optional per-field messages.
*/
package errs

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"alumnilink/internal/pkg/logx"
)

// CustomError is the error type handed from services to the HTTP layer.
type CustomError struct {
	// Code is the business error code (see error_codes.go).
	Code int

	// Message is the user-facing description.
	Message string

	// Status is the HTTP status sent with this error.
	Status int

	// Fields holds per-field validation messages keyed by JSON field name.
	Fields map[string]string
}

// Error implements the error interface.
func (e CustomError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("Error Code %d (HTTP %d): %s %v", e.Code, e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code. Optional details are
// printf arguments for messages that contain a verb. For ErrUnknown the first
// detail may be the underlying error, which is logged and never exposed.
// Unregistered codes collapse to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("error code %d is not registered", code),
			"Unknown error code requested",
			"requested_code", code,
		)
		template = errorMap[ErrUnknown]
	}

	customErr := template
	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if code == ErrUnknown && len(details) > 0 {
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn("Details provided for error without formatting verbs. Details ignored.", "code", code)
		}
	}

	return &customErr
}

// Validation builds an ErrValidationFailed error carrying the given field messages.
func Validation(fields map[string]string) *CustomError {
	e := NewError(ErrValidationFailed)
	e.Fields = maps.Clone(fields)
	return e
}

// From converts any error into a *CustomError. Custom errors pass through; anything
// else is logged and reported as ErrUnknown.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return NewError(ErrUnknown, err)
}

// Is reports whether err is a *CustomError with the given code.
func Is(err error, code int) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.Code == code
}
