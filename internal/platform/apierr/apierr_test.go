package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfUnwrapsWrappedErrors(t *testing.T) {
	base := BadRequest("no_records", errors.New("no records"))
	wrapped := fmt.Errorf("load csv: %w", base)
	if got := StatusOf(wrapped); got != http.StatusBadRequest {
		t.Fatalf("status=%d", got)
	}
	if got := CodeOf(wrapped); got != "no_records" {
		t.Fatalf("code=%q", got)
	}
}

func TestStatusOfDefaultsTo500(t *testing.T) {
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status=%d", got)
	}
	if got := CodeOf(errors.New("boom")); got != "internal_error" {
		t.Fatalf("code=%q", got)
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("got=%q", got)
	}
	if got := New(0, "code_only", nil).Error(); got != "code_only" {
		t.Fatalf("got=%q", got)
	}
}
