// Package diagfmt renders diagnostics for people (Pretty) and for tools (JSON).
package diagfmt

// PathMode selects how file paths are printed.
type PathMode uint8

const (
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var pathModeNames = [...]string{"auto", "absolute", "relative", "basename"}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color    bool
	PathMode PathMode
	BaseDir  string
	// Context is how many lines around the primary line are shown.
	Context   int
	ShowNotes bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	PathMode         PathMode
	BaseDir          string
	IncludePositions bool
	IncludeNotes     bool
	// Max truncates the output; 0 keeps everything.
	Max int
}
