package domainerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHasCode(t *testing.T) {
	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "config missing")
		if !HasCode(err, CodeNotFound) {
			t.Fatalf("expected CodeNotFound")
		}
		if HasCode(err, CodeConflict) {
			t.Fatalf("did not expect CodeConflict")
		}
	})

	t.Run("wrapped chain", func(t *testing.T) {
		inner := New(CodeConflict, "duplicate nullifier")
		outer := Wrap(inner, CodeInternal, "ledger write failed")
		if !HasCode(outer, CodeConflict) {
			t.Fatalf("expected inner CodeConflict to be visible")
		}
		if !HasCode(outer, CodeInternal) {
			t.Fatalf("expected outer CodeInternal to be visible")
		}
	})

	t.Run("foreign error", func(t *testing.T) {
		if HasCode(errors.New("boom"), CodeInternal) {
			t.Fatalf("foreign errors carry no code")
		}
	})

	t.Run("fmt wrapped", func(t *testing.T) {
		err := fmt.Errorf("request failed: %w", New(CodeUnavailable, "verifier down"))
		if !HasCode(err, CodeUnavailable) {
			t.Fatalf("expected code through fmt wrapping")
		}
	})
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != CodeInternal {
		t.Fatalf("foreign error should map to internal, got %s", got)
	}
	if got := CodeOf(Wrap(New(CodeNotFound, "x"), CodeUnavailable, "y")); got != CodeUnavailable {
		t.Fatalf("expected outermost code, got %s", got)
	}
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Wrap(sentinel, CodeInternal, "wrapped")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to reach the sentinel")
	}
}
