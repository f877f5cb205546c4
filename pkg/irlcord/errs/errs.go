// Package errs provides the typed failures produced by the policy engines and
// the catalog that turns them into user-facing chat replies.
package errs

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Permission errors
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeForbidden        Code = "FORBIDDEN"

	// Lookup errors
	CodeNotFound     Code = "NOT_FOUND"
	CodeWrongChannel Code = "WRONG_CHANNEL"

	// Group membership errors
	CodeDuplicateName Code = "DUPLICATE_NAME"
	CodeAlreadyMember Code = "ALREADY_MEMBER"
	CodeNotMember     Code = "NOT_MEMBER"
	CodeLastLeader    Code = "LAST_LEADER"
	CodeNotOpen       Code = "NOT_OPEN"

	// Input errors
	CodeMissingField    Code = "MISSING_FIELD"
	CodeInvalidDateTime Code = "INVALID_DATE_TIME"
	CodeInvalidNumber   Code = "INVALID_NUMBER"
	CodeInvalidEnum     Code = "INVALID_ENUM"

	// Event attendance errors
	CodeNotApproved    Code = "NOT_APPROVED"
	CodeNotGroupMember Code = "NOT_GROUP_MEMBER"

	// Storage errors
	CodeRepositoryFailure Code = "REPOSITORY_FAILURE"
)

// Error is a typed failure with a code, an internal message and optional
// metadata used when rendering the user-facing message.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates an error with metadata for message templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates an error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Storage wraps a repository error. Errors that already carry a code pass
// through unchanged so NotFound stays NotFound.
func Storage(message string, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return Wrap(CodeRepositoryFailure, message, cause)
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a typed error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Is checks if the error has the specified code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
