package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := E(KindValidation, "recipient is required")
	if got := plain.Error(); got != "VALIDATION_ERROR: recipient is required" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("timeout")
	wrapped := Wrap(KindDispatchFailed, "adapter send failed", cause)
	if got := wrapped.Error(); got != "DISPATCH_FAILED: adapter send failed: timeout" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error must unwrap to its cause")
	}
}

func TestEf(t *testing.T) {
	err := Ef(KindChannelNotFound, "channel %d not found", 7)
	if err.Kind != KindChannelNotFound || err.Message != "channel 7 not found" {
		t.Errorf("Ef = %+v", err)
	}
}

func TestKindOfAndMessageOf(t *testing.T) {
	typed := E(KindAccessDenied, "channel 7 does not belong to this tenant")
	if KindOf(typed) != KindAccessDenied {
		t.Errorf("KindOf typed = %s", KindOf(typed))
	}
	if MessageOf(typed) != "channel 7 does not belong to this tenant" {
		t.Errorf("MessageOf typed = %q", MessageOf(typed))
	}

	// Typed errors stay classifiable through fmt wrapping.
	rewrapped := fmt.Errorf("handler: %w", typed)
	if KindOf(rewrapped) != KindAccessDenied {
		t.Errorf("KindOf rewrapped = %s", KindOf(rewrapped))
	}
	if MessageOf(rewrapped) != typed.Message {
		t.Errorf("MessageOf rewrapped = %q", MessageOf(rewrapped))
	}

	// Untyped errors fall back to the generic dispatch failure.
	plain := errors.New("boom")
	if KindOf(plain) != KindDispatchFailed {
		t.Errorf("KindOf untyped = %s", KindOf(plain))
	}
	if MessageOf(plain) != "boom" {
		t.Errorf("MessageOf untyped = %q", MessageOf(plain))
	}
}
