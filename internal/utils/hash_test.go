package utils

import "testing"

func TestHashDisplayName(t *testing.T) {
	pepper := []byte("pepper")
	a, err := HashDisplayName(pepper, "  Alice ")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, _ := HashDisplayName(pepper, "alice")
	if a != b {
		t.Fatalf("normalised names should hash equally: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	c, _ := HashDisplayName([]byte("other"), "alice")
	if c == a {
		t.Fatalf("different peppers must give different digests")
	}
}
