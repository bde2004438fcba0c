package contract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a failure surfaced to the user
type ErrorKind string

const (
	// ErrKindValidation indicates a user-input problem (no content, bad file type, oversized file, blank URL)
	ErrKindValidation ErrorKind = "validation"

	// ErrKindNetwork indicates the remote endpoint could not be reached
	ErrKindNetwork ErrorKind = "network"

	// ErrKindStatus indicates the remote endpoint answered with a non-2xx status
	ErrKindStatus ErrorKind = "status"

	// ErrKindParse indicates a malformed response body or unreadable file bytes
	ErrKindParse ErrorKind = "parse"

	// ErrKindCanceled indicates the operation was superseded or canceled
	ErrKindCanceled ErrorKind = "canceled"

	// ErrKindBusy indicates a submission is already in flight
	ErrKindBusy ErrorKind = "busy"
)

// Error is the single error type crossing package boundaries in ContractLens
type Error struct {
	// Kind categorizes the error
	Kind ErrorKind `json:"kind"`

	// Op names the operation that failed (submit, import, select, decode)
	Op string `json:"op,omitempty"`

	// Message provides a human-readable description
	Message string `json:"message"`

	// StatusCode for HTTP status failures
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, e.Op)
	}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel values usable with errors.Is
var (
	ErrValidation = &Error{Kind: ErrKindValidation}
	ErrNetwork    = &Error{Kind: ErrKindNetwork}
	ErrStatus     = &Error{Kind: ErrKindStatus}
	ErrParse      = &Error{Kind: ErrKindParse}
	ErrCanceled   = &Error{Kind: ErrKindCanceled}
	ErrBusy       = &Error{Kind: ErrKindBusy}
)

// NewValidationError creates a validation error
func NewValidationError(op, message string) *Error {
	return &Error{Kind: ErrKindValidation, Op: op, Message: message}
}

// NewNetworkError creates a network error wrapping cause
func NewNetworkError(op, message string, cause error) *Error {
	return &Error{Kind: ErrKindNetwork, Op: op, Message: message, Cause: cause}
}

// NewStatusError creates an error for a non-2xx response
func NewStatusError(op string, status int, message string) *Error {
	return &Error{Kind: ErrKindStatus, Op: op, StatusCode: status, Message: message}
}

// NewParseError creates a parse error wrapping cause
func NewParseError(op, message string, cause error) *Error {
	return &Error{Kind: ErrKindParse, Op: op, Message: message, Cause: cause}
}

// NewCanceledError creates a canceled error
func NewCanceledError(op string, cause error) *Error {
	return &Error{Kind: ErrKindCanceled, Op: op, Message: "operation canceled", Cause: cause}
}

// NewBusyError creates a busy error
func NewBusyError(op string) *Error {
	return &Error{Kind: ErrKindBusy, Op: op, Message: "an analysis is already in progress"}
}

// KindOf returns the kind of err, or "" when err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return KindOf(err) == ErrKindValidation
}

// IsCanceledError checks if an error is a cancellation
func IsCanceledError(err error) bool {
	return KindOf(err) == ErrKindCanceled
}

// IsBusyError checks if an error reports an in-flight submission
func IsBusyError(err error) bool {
	return KindOf(err) == ErrKindBusy
}
