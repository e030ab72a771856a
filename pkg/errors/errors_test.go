package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeSourceMissingPath, "source path not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeSourceMissingPath {
		t.Errorf("expected code %s, got %s", ErrCodeSourceMissingPath, err.Code)
	}
	if err.Message != "source path not found" {
		t.Errorf("expected message 'source path not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("connection refused")
	ctx := map[string]interface{}{
		"url":     "https://charts.internal/stack.tar.gz",
		"cluster": "ai-cluster",
	}

	err := WrapWithContext(ErrCodeSourceUnreachable, "archive fetch failed", cause, ctx)

	if err.Code != ErrCodeSourceUnreachable {
		t.Errorf("expected code %s, got %s", ErrCodeSourceUnreachable, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["cluster"] != "ai-cluster" {
		t.Errorf("expected cluster to be ai-cluster")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeValidation, "invalid document"),
			expected: "[VALIDATION] invalid document",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeStateCorrupt, "bad state")); got != ErrCodeStateCorrupt {
		t.Errorf("expected %s, got %s", ErrCodeStateCorrupt, got)
	}
	if got := CodeOf(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("expected %s for plain error, got %s", ErrCodeInternal, got)
	}
}

func TestErrorClasses(t *testing.T) {
	sourceCodes := []ErrorCode{
		ErrCodeSourceAuth,
		ErrCodeSourceUnreachable,
		ErrCodeSourceDigestMismatch,
		ErrCodeSourceMissingPath,
	}
	for _, code := range sourceCodes {
		if !IsSourceError(code) {
			t.Errorf("expected %s to be a source error", code)
		}
	}
	if IsSourceError(ErrCodeValidation) {
		t.Error("validation is not a source error")
	}

	if !IsRenderError(ErrCodeRenderMissingInput) || !IsRenderError(ErrCodeRenderTemplate) {
		t.Error("expected render codes to be render errors")
	}

	if !IsStateError(ErrCodeStateCorrupt) || !IsStateError(ErrCodeStateConflict) {
		t.Error("expected state codes to be state errors")
	}
	if IsStateError(ErrCodeRenderTemplate) {
		t.Error("render template is not a state error")
	}

	if !IsTransient(ErrCodeSourceUnreachable) {
		t.Error("unreachable should be transient")
	}
	if IsTransient(ErrCodeSourceDigestMismatch) {
		t.Error("digest mismatch must never be retried")
	}
}
