// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types and error handling utilities for syncsplit.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrCapacityExhausted is returned when a claim of n slots cannot be
	// satisfied because fewer than n unclaimed slots remain.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	// ErrSplitterDone is returned by any claim made after finalization.
	ErrSplitterDone = errors.New("splitter already finalized")

	// ErrInvalidArgument is returned for a claim width or size that can never
	// be valid.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeCapacityExhausted
	ErrCodeFinalized
	ErrCodeInternal
)

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid-argument"
	case ErrCodeCapacityExhausted:
		return "capacity-exhausted"
	case ErrCodeFinalized:
		return "finalized"
	}
	return "internal"
}

// Error represents a structured error with code and context.
// If Cause is set, errors.Is and errors.As see through to it.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap returns the wrapped sentinel, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error wrapping cause.
func WrapError(code ErrorCode, message string, cause error) *Error {
	e := NewError(code, message)
	e.Cause = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode of err, or ErrCodeInternal if err carries none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrCapacityExhausted):
		return ErrCodeCapacityExhausted
	case errors.Is(err, ErrSplitterDone):
		return ErrCodeFinalized
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	}
	return ErrCodeInternal
}
