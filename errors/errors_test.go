package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestSessionNotIndexedError(t *testing.T) {
	err := NewSessionNotIndexedError("PNC_LG_810336", "20190101x1234")

	if err.Label != "20190101x1234" {
		t.Errorf("Label = %v, want 20190101x1234", err.Label)
	}

	if !strings.Contains(err.Error(), "PNC_LG_810336") {
		t.Errorf("Error() = %q, should mention the project", err.Error())
	}

	var target *SessionNotIndexedError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match *SessionNotIndexedError")
	}
}

func TestSessionNotIndexedErrorWithoutProject(t *testing.T) {
	err := NewSessionNotIndexedError("", "abc")

	if got, want := err.Error(), `session "abc" not indexed`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestServiceError(t *testing.T) {
	innerErr := errors.New("connection refused")
	err := NewServiceError("list sessions", innerErr)

	if err.Op != "list sessions" {
		t.Errorf("Op = %v, want list sessions", err.Op)
	}

	if !errors.Is(err, innerErr) {
		t.Error("Should unwrap to inner error")
	}

	if err.IsNotFound() {
		t.Error("transport error should not be reported as not found")
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		isNotFound     bool
		isUnauthorized bool
	}{
		{"NotFound", 404, true, false},
		{"Unauthorized", 401, false, true},
		{"Forbidden", 403, false, true},
		{"ServerError", 500, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStatusError("find project", tt.status, "boom")

			if err.IsNotFound() != tt.isNotFound {
				t.Errorf("IsNotFound() = %v, want %v", err.IsNotFound(), tt.isNotFound)
			}
			if err.IsUnauthorized() != tt.isUnauthorized {
				t.Errorf("IsUnauthorized() = %v, want %v", err.IsUnauthorized(), tt.isUnauthorized)
			}
			if err.Error() == "" {
				t.Error("Error message should not be empty")
			}
			if err.Unwrap() != nil {
				t.Error("status error should not wrap a cause")
			}
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrInvalidTemplate, ErrInvalidOptions, ErrProjectNotFound, ErrEmptyIndex, ErrUnknownProject}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
