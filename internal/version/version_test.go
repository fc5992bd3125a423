package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestBanner(t *testing.T) {
	origV, origC, origD := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origV, origC, origD }()

	Version, GitCommit, BuildDate = "1.2.3", "", ""
	if got := Banner(false); got != "taoc 1.2.3" {
		t.Fatalf("Banner = %q", got)
	}
	GitCommit, BuildDate = "abc123def4567890", "2026-01-15"
	if got := Banner(false); got != "taoc 1.2.3 (abc123def456) built 2026-01-15" {
		t.Fatalf("Banner = %q", got)
	}
}

func TestColoredKeepsText(t *testing.T) {
	orig, origNo := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNo }()

	color.NoColor = true
	Version = "0.4.1-rc1"
	if got := Colored(); got != "0.4.1-rc1" {
		t.Fatalf("Colored = %q", got)
	}
}
