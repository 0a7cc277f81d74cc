package domain

import (
	"errors"
	"testing"
)

func TestSanitizeUserName(t *testing.T) {
	t.Parallel()

	t.Run("valid names", func(t *testing.T) {
		for _, name := range []string{"alice", "bob_2", "x9", "  padded  "} {
			got, err := SanitizeUserName(name)
			if err != nil {
				t.Fatalf("expected no error for %q, got %v", name, err)
			}
			if got != "alice" && got != "bob_2" && got != "x9" && got != "padded" {
				t.Fatalf("unexpected sanitized name %q", got)
			}
		}
	})

	t.Run("rejects uppercase", func(t *testing.T) {
		if _, err := SanitizeUserName("Uppercase"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects spaces", func(t *testing.T) {
		if _, err := SanitizeUserName("user with space"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		if _, err := SanitizeUserName("   "); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestSanitizeTagName(t *testing.T) {
	t.Parallel()

	got, err := SanitizeTagName(" food-and_drink ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "food-and_drink" {
		t.Fatalf("expected trimmed name, got %q", got)
	}

	if _, err := SanitizeTagName(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty name, got %v", err)
	}

	if _, err := SanitizeTagName("a/b"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for slash, got %v", err)
	}
}

func TestSanitizeAgentAndOrderName(t *testing.T) {
	t.Parallel()

	if _, err := SanitizeAgentName("csvimport"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := SanitizeOrderName("rent 2024"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for space, got %v", err)
	}
}
