package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMass, "mass must be positive, got %g", -3.0)

	if err.Code != ErrCodeInvalidMass {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidMass)
	}
	want := "INVALID_MASS: mass must be positive, got -3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write preview")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidScale, "scale must be positive")

	if !Is(err, ErrCodeInvalidScale) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeInvalidMass) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInvalidScale) {
		t.Error("Is should not match plain errors")
	}

	// Code survives wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("render: %w", err)
	if !Is(wrapped, ErrCodeInvalidScale) {
		t.Error("Is should unwrap fmt.Errorf chains")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeImageNotFound, "missing")); got != ErrCodeImageNotFound {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeImageNotFound)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode for plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidMethod, "unknown method %q", "turbo")
	if got := UserMessage(err); got != `unknown method "turbo"` {
		t.Errorf("UserMessage = %q", got)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage for plain error = %q", got)
	}
}

func TestIsValidation(t *testing.T) {
	cases := []struct {
		code Code
		want bool
	}{
		{ErrCodeInvalidMass, true},
		{ErrCodeInvalidScale, true},
		{ErrCodeInvalidMethod, true},
		{ErrCodeInvalidDimensions, true},
		{ErrCodeInvalidFilename, true},
		{ErrCodeImageNotFound, false},
		{ErrCodeInternal, false},
	}
	for _, tc := range cases {
		if got := IsValidation(New(tc.code, "x")); got != tc.want {
			t.Errorf("IsValidation(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
