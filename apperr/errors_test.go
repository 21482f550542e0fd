// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"op and message", New(CodeInvalidInput, "attempts.register", "tries must be >= 1"), "attempts.register: tries must be >= 1 (invalid_input)"},
		{"op only", New(CodeInternal, "db.open", ""), "db.open (internal)"},
		{"message only", New(CodeNotFound, "", "album not found"), "album not found (not_found)"},
		{"code only", New(CodeConflict, "", ""), "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeStorageUnavailable, "aggregate.get", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected wrapped error to match cause with errors.Is")
	}
	if !IsCode(err, CodeStorageUnavailable) {
		t.Errorf("Expected storage_unavailable, got %q", CodeOf(err))
	}
	if Wrap(CodeInternal, "noop", nil) != nil {
		t.Error("Expected Wrap(nil) to return nil")
	}
}

func TestCodeOfThroughFmtWrapping(t *testing.T) {
	inner := InvalidInput("albums.schedule", "bad date %q", "2025-13-01")
	outer := fmt.Errorf("handler: %w", inner)

	if CodeOf(outer) != CodeInvalidInput {
		t.Errorf("Expected invalid_input, got %q", CodeOf(outer))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("Expected empty code for untagged error")
	}
	if IsCode(nil, CodeInternal) {
		t.Error("Expected nil error to carry no code")
	}
}
