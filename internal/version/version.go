// Package version carries build information of taoc. The variables are set
// with -ldflags "-X tao/internal/version.Version=..." at release time.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the plain semantic version.
	Version = "0.1.0-dev"
	// GitCommit is the commit the binary was built from, if known.
	GitCommit = ""
	// BuildDate is an ISO-8601 timestamp, if known.
	BuildDate = ""
)

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Colored renders Version with each of major, minor and patch in its own
// colour. fatih/color already turns colours off for non-terminals and NO_COLOR.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	for i, p := range parts {
		if i < len(partColors) {
			parts[i] = partColors[i].Sprint(p)
		}
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Banner is the full `taoc version` text.
func Banner(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "taoc %s", v)
	if GitCommit != "" {
		fmt.Fprintf(&sb, " (%s)", shortCommit(GitCommit))
	}
	if BuildDate != "" {
		fmt.Fprintf(&sb, " built %s", BuildDate)
	}
	return sb.String()
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
