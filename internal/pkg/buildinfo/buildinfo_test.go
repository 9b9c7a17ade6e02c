package buildinfo

import "testing"

func TestString(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	Version, Commit = "v1.2.3", "unknown"
	if got := String(); got != "v1.2.3" {
		t.Fatalf("got=%q", got)
	}
	Commit = "abc123"
	if got := String(); got != "v1.2.3 (abc123)" {
		t.Fatalf("got=%q", got)
	}
}
