package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRequest, "test message: %s", "value")

	if err.Code != ErrCodeInvalidRequest {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRequest)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_REQUEST: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeTransient, cause, "failed to fetch")

	if err.Code != ErrCodeTransient {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeTransient)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeNotFound, "gone"), ErrCodeNotFound, true},
		{"different code", New(ErrCodeNotFound, "gone"), ErrCodeTransient, false},
		{"plain error", errors.New("plain"), ErrCodeNotFound, false},
		{"wrapped structured error", Wrap(ErrCodeRenderFailed, New(ErrCodeInternal, "inner"), "outer"), ErrCodeRenderFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeCyclicFolder, "loop")); got != ErrCodeCyclicFolder {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeCyclicFolder)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(New(ErrCodeNotFound, "gone")) {
		t.Error("NOT_FOUND should be terminal")
	}
	if !IsTerminal(New(ErrCodePermissionDenied, "denied")) {
		t.Error("PERMISSION_DENIED should be terminal")
	}
	if IsTerminal(New(ErrCodeTransient, "flaky")) {
		t.Error("TRANSIENT should not be terminal")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeRenderFailed, "malformed vector document")
	if got := UserMessage(err); got != "malformed vector document" {
		t.Errorf("UserMessage() = %q", got)
	}
	plain := errors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	err := &RateLimitedError{RetryAfter: 30}
	if err.Error() != "rate limited: retry after 30 seconds" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Code() != ErrCodeRateLimited {
		t.Errorf("Code() = %v", err.Code())
	}
}
