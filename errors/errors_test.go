package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "coolDown out of range: %v", 1.5)

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}
	if err.Message != "coolDown out of range: 1.5" {
		t.Errorf("Message = %v, want %v", err.Message, "coolDown out of range: 1.5")
	}

	expected := "INVALID_CONFIG: coolDown out of range: 1.5"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "read graph.json")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got != "FILE_NOT_FOUND: read graph.json: no such file" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeUnavailable, "x"), ErrCodeUnavailable, true},
		{"non-matching code", New(ErrCodeUnavailable, "x"), ErrCodeInternal, false},
		{"outer code wins", Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInternal, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "unsupported output format: %s", "bmp")
	if GetCode(err) != ErrCodeInvalidFormat {
		t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode() on plain error should be empty")
	}
	if UserMessage(err) != "unsupported output format: bmp" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}
	if UserMessage(errors.New("plain")) != "plain" {
		t.Errorf("UserMessage() on plain error = %q", UserMessage(errors.New("plain")))
	}
}
