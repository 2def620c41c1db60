package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppError_CreatesErrorWithCorrectFields(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeNotFound)

	assert.Equal(t, baseErr, appErr.Err)
	assert.Equal(t, "custom message", appErr.Message)
	assert.Equal(t, CodeNotFound, appErr.Code)
}

func TestAppError_Error_ReturnsMessage(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeNotFound)

	assert.Equal(t, "custom message", appErr.Error())
}

func TestAppError_Error_ReturnsBaseErrorWhenNoMessage(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "", CodeNotFound)

	assert.Equal(t, "base error", appErr.Error())
}

func TestAppError_Unwrap_ReturnsWrappedError(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeNotFound)

	unwrapped := appErr.Unwrap()
	assert.Equal(t, baseErr, unwrapped)
}

func TestWrap_WrapsErrorWithContext(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := Wrap(baseErr, "context")

	assert.Contains(t, wrapped.Error(), "context")
	assert.Contains(t, wrapped.Error(), "base error")
}

func TestWrap_ReturnsNilForNilError(t *testing.T) {
	wrapped := Wrap(nil, "context")
	assert.Nil(t, wrapped)
}

func TestIsNotFound_ReturnsTrueForNotFoundErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrNotFound", ErrNotFound, true},
		{"ErrIdentityNotFound", ErrIdentityNotFound, true},
		{"ErrMessageNotFound", ErrMessageNotFound, true},
		{"ErrAttachmentNotFound", ErrAttachmentNotFound, true},
		{"wrapped ErrNotFound", Wrap(ErrNotFound, "context"), true},
		{"other error", errors.New("other"), false},
		{"ErrAlreadyClaimed", ErrAlreadyClaimed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNotFound(tt.err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestIsAlreadyClaimed_ReturnsTrueForLostRecovery(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrAlreadyClaimed", ErrAlreadyClaimed, true},
		{"wrapped ErrAlreadyClaimed", Wrap(ErrAlreadyClaimed, "context"), true},
		{"other error", errors.New("other"), false},
		{"ErrNotFound", ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsAlreadyClaimed(tt.err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestIsInvalidInput_ReturnsTrueForInvalidInputErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrInvalidInput", ErrInvalidInput, true},
		{"ErrNoFile", ErrNoFile, true},
		{"ErrInvalidName", ErrInvalidName, true},
		{"wrapped ErrInvalidInput", Wrap(ErrInvalidInput, "context"), true},
		{"other error", errors.New("other"), false},
		{"ErrNotFound", ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsInvalidInput(tt.err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestGetErrorCode_ReturnsCorrectCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrNotFound", ErrNotFound, CodeNotFound},
		{"ErrIdentityNotFound", ErrIdentityNotFound, CodeNotFound},
		{"ErrMessageNotFound", ErrMessageNotFound, CodeNotFound},
		{"ErrAttachmentNotFound", ErrAttachmentNotFound, CodeNotFound},
		{"ErrAlreadyClaimed", ErrAlreadyClaimed, CodeAlreadyClaimed},
		{"ErrUnknownReceiver", ErrUnknownReceiver, CodeUnknownReceiver},
		{"ErrInvalidInput", ErrInvalidInput, CodeInvalidInput},
		{"ErrNoFile", ErrNoFile, CodeInvalidInput},
		{"ErrInvalidName", ErrInvalidName, CodeInvalidInput},
		{"ErrCorruptMailbox", ErrCorruptMailbox, CodeCorrupt},
		{"ErrUnauthorized", ErrUnauthorized, CodeUnauthorized},
		{"wrapped ErrUnknownReceiver", Wrap(ErrUnknownReceiver, "send"), CodeUnknownReceiver},
		{"unknown error", errors.New("unknown"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetErrorCode(tt.err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestGetErrorCode_PrefersAppErrorCode(t *testing.T) {
	appErr := NewAppError(ErrInvalidInput, "blocked extension", CodeInvalidInput)
	assert.Equal(t, CodeInvalidInput, GetErrorCode(appErr))

	// The embedded code wins over sentinel matching.
	appErr = NewAppError(ErrNotFound, "masked", CodeUnauthorized)
	assert.Equal(t, CodeUnauthorized, GetErrorCode(appErr))
}

func TestErrorCodes_AreCorrectValues(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", CodeNotFound)
	assert.Equal(t, "ALREADY_CLAIMED", CodeAlreadyClaimed)
	assert.Equal(t, "INVALID_INPUT", CodeInvalidInput)
	assert.Equal(t, "UNKNOWN_RECEIVER", CodeUnknownReceiver)
	assert.Equal(t, "CORRUPT", CodeCorrupt)
	assert.Equal(t, "UNAUTHORIZED", CodeUnauthorized)
	assert.Equal(t, "INTERNAL_ERROR", CodeInternalError)
}

func TestAppError_CanBeUnwrappedWithErrorsIs(t *testing.T) {
	appErr := NewAppError(ErrNotFound, "test", CodeNotFound)

	assert.True(t, errors.Is(appErr, ErrNotFound))
}
