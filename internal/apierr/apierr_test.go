package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNotFoundUnwrapsThroughWrapping(t *testing.T) {
	base := fmt.Errorf("Warranty slip not found")
	wrapped := fmt.Errorf("loading slip: %w", NotFound(base))

	var aErr *Error
	if !errors.As(wrapped, &aErr) {
		t.Fatal("errors.As failed to find *Error in wrapped chain")
	}
	if aErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", aErr.Status, http.StatusNotFound)
	}
	if aErr.Code != "not_found" {
		t.Errorf("Code = %q, want %q", aErr.Code, "not_found")
	}
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is lost the base error")
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "nil receiver", err: nil, want: ""},
		{name: "wrapped error wins", err: New(404, "not_found", fmt.Errorf("gone")), want: "gone"},
		{name: "code when no error", err: &Error{Status: 404, Code: "not_found"}, want: "not_found"},
		{name: "status when nothing else", err: &Error{Status: 418}, want: "api error (418)"},
		{name: "empty", err: &Error{}, want: "api error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}
