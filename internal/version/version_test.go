package version

import (
	"testing"

	"github.com/fatih/color"
)

func withPlain(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func override(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestString(t *testing.T) {
	withPlain(t)
	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"1.2.3", "", "", "slyc 1.2.3"},
		{"0.1.0-dev", "abc123", "", "slyc 0.1.0-dev (commit abc123)"},
		{"1.0.0", "1234567890abcdef1234", "2024-01-15", "slyc 1.0.0 (commit 1234567890ab, built 2024-01-15)"},
		{"nightly", "", "", "slyc nightly"},
	}
	for _, tc := range cases {
		override(t, tc.version, tc.commit, tc.date)
		if got := String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	withPlain(t)
	override(t, "1.0.0-beta.1", "", "")
	if got := Colored(); got != "1.0.0-beta.1" {
		t.Fatalf("Colored() = %q", got)
	}
}
