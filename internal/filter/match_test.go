package filter

import (
	"strings"
	"testing"
)

func TestMatches_EmptyInputs(t *testing.T) {
	if Matches("text/plain", nil, ExactOrWildcard) {
		t.Fatalf("nil list must not match")
	}
	if Matches("text/plain", []string{}, ExactOrWildcard) {
		t.Fatalf("empty list must not match")
	}
}

func TestMatches_EmptyCandidate(t *testing.T) {
	if !Matches("", []string{"*"}, ExactOrWildcard) {
		t.Fatalf("wildcard must match an empty candidate")
	}
	if Matches("", []string{"text/plain"}, ExactOrWildcard) {
		t.Fatalf("empty candidate must not match a concrete entry")
	}
}

func TestMatches_ExactAndWildcard(t *testing.T) {
	if !Matches("a", []string{"b", "a"}, ExactOrWildcard) {
		t.Fatalf("expected exact match")
	}
	if !Matches("z", []string{"b", "*"}, ExactOrWildcard) {
		t.Fatalf("expected wildcard match")
	}
	if Matches("z", []string{"b", "a"}, ExactOrWildcard) {
		t.Fatalf("unexpected match")
	}
}

func TestMatches_ShortCircuits(t *testing.T) {
	calls := 0
	eq := func(candidate, entry string) bool {
		calls++
		return strings.HasPrefix(candidate, entry)
	}
	if !Matches("image/png", []string{"image/", "image/png", "text/"}, eq) {
		t.Fatalf("expected prefix match")
	}
	if calls != 1 {
		t.Fatalf("expected 1 comparison, got %d", calls)
	}
}

func TestMatches_NilEqualDefaults(t *testing.T) {
	if !Matches("x", []string{"*"}, nil) {
		t.Fatalf("expected default comparison to honor wildcard")
	}
}
