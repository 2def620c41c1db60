package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyClaimed indicates an identity recovery lost to an
	// existing record for the same ID
	ErrAlreadyClaimed = errors.New("identity already claimed")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownReceiver indicates the target identity does not exist
	ErrUnknownReceiver = errors.New("unknown receiver")

	// ErrIdentityNotFound indicates the identity was not found
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrMessageNotFound indicates the message was not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrAttachmentNotFound indicates the attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrNoFile indicates a file send without a filename
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidName indicates a stored attachment name that fails the
	// expected format
	ErrInvalidName = errors.New("invalid attachment name")

	// ErrCorruptMailbox indicates a persisted log that could not be
	// decoded; it is contained, never fatal
	ErrCorruptMailbox = errors.New("corrupt mailbox log")

	// ErrUnauthorized indicates a request without a resolvable session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyClaimed  = "ALREADY_CLAIMED"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnknownReceiver = "UNKNOWN_RECEIVER"
	CodeCorrupt         = "CORRUPT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrIdentityNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrAttachmentNotFound)
}

// IsAlreadyClaimed checks if an error is a lost-recovery error
func IsAlreadyClaimed(err error) bool {
	return errors.Is(err, ErrAlreadyClaimed)
}

// IsInvalidInput checks if an error is an invalid-input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrInvalidName)
}

// GetErrorCode extracts the API error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrIdentityNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrAttachmentNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyClaimed):
		return CodeAlreadyClaimed
	case errors.Is(err, ErrUnknownReceiver):
		return CodeUnknownReceiver
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNoFile),
		errors.Is(err, ErrInvalidName):
		return CodeInvalidInput
	case errors.Is(err, ErrCorruptMailbox):
		return CodeCorrupt
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}
