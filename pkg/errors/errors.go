// Package errors defines the host/CLI-facing error taxonomy. It is
// deliberately separate from the engine's ECMAScript error hierarchy in
// internal/engine/rt: this package covers failures in the surrounding
// tooling (config, CLI, diagnostics, I/O), not script-visible errors.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an AppError for programmatic handling (exit codes,
// metrics labels) without parsing its message.
type Code string

const (
	CodeConfig      Code = "CONFIG_ERROR"
	CodeScript      Code = "SCRIPT_ERROR"
	CodeIO          Code = "IO_ERROR"
	CodeDiagnostics Code = "DIAGNOSTICS_ERROR"
	CodeInternal    Code = "INTERNAL_ERROR"
)

// AppError is a structured error carrying a stable Code alongside a
// human-readable message and an optional wrapped cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is lets errors.Is match two AppErrors by Code alone, so callers can
// test for a class of failure without string comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an AppError with no wrapped cause.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches code and message to an existing error. Wrap returns nil
// if err is nil, so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Err: err}
}
