package normalize

import "testing"

func TestPythonNormalizeRenamesParameters(t *testing.T) {
	a := []byte("def add(x, y):\n    return x + y\n")
	b := []byte("def add(a, b):\n    return a + b\n")

	n := For("python")
	ra := n.Normalize(a)
	rb := n.Normalize(b)

	if ra.Degraded || rb.Degraded {
		t.Fatalf("expected non-degraded normalization, got a=%v b=%v", ra.Degraded, rb.Degraded)
	}
	if string(ra.Bytes) != string(rb.Bytes) {
		t.Fatalf("expected equal canonical forms:\n%s\n---\n%s", ra.Bytes, rb.Bytes)
	}
}

func TestPythonNormalizeStripsComments(t *testing.T) {
	src := []byte("# a comment\ndef add(x, y):\n    return x + y  # inline\n")
	r := For("python").Normalize(src)
	if containsSubstring(r.Bytes, "comment") || containsSubstring(r.Bytes, "inline") {
		t.Fatalf("expected comments stripped, got:\n%s", r.Bytes)
	}
}

func TestPythonNormalizeDegradesOnSyntaxError(t *testing.T) {
	r := For("python").Normalize([]byte("def add(x, y:\n    return x +\n"))
	if !r.Degraded {
		t.Fatalf("expected degraded result for malformed python")
	}
}
