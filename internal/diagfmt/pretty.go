package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tao/internal/diag"
	"tao/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

type prettyWriter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
	err  error
}

// Pretty writes every diagnostic of bag in the order the bag holds them:
//
//	path:line:col: error SEM3003: message
//	   4 | source line
//	     |     ^^^^
//	  note: path:line:col: note message
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pw := &prettyWriter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for _, d := range bag.Items() {
		pw.diagnostic(d)
	}
	if n := bag.Dropped(); n > 0 {
		pw.printf("... %d more diagnostics not shown\n", n)
	}
	return pw.err
}

func (pw *prettyWriter) diagnostic(d diag.Diagnostic) {
	sev := pw.pal.severity(d.Severity)
	pw.printf("%s: %s %s: %s\n",
		pw.pal.path.Sprint(pw.location(d.Primary)),
		sev.Sprint(d.Severity.Label()),
		sev.Sprint(d.Code.ID()),
		d.Message)
	// info diagnostics are reports about the run, not about the source
	quote := d.Severity != diag.SevInfo
	if quote {
		pw.snippet(d.Primary, sev)
	}
	if !pw.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		pw.printf("  %s %s: %s\n", pw.pal.note.Sprint("note:"), pw.location(n.Span), n.Msg)
		if quote {
			pw.snippet(n.Span, pw.pal.note)
		}
	}
}

func (pw *prettyWriter) location(sp source.Span) string {
	f := pw.fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := pw.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, pw.opts.PathMode, pw.opts.BaseDir), start.Line, start.Col)
}

// snippet shows the first line of sp with carets under the spanned text.
func (pw *prettyWriter) snippet(sp source.Span, c *color.Color) {
	f := pw.fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := pw.fs.Resolve(sp)
	first := max(1, int(start.Line)-pw.opts.Context)
	last := int(start.Line) + pw.opts.Context
	width := len(strconv.Itoa(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(uint32(ln)) // #nosec G115 -- line numbers come from Resolve
		if ln != int(start.Line) && text == "" {
			continue
		}
		pw.printf("%s %s\n", pw.pal.gutter.Sprintf("%*d |", width, ln), text)
		if ln != int(start.Line) {
			continue
		}
		lineEnd := uint32(len(text)) + 1 // #nosec G115 -- a single line of a checked file
		if end.Line == start.Line {
			lineEnd = end.Col
		}
		pad, marks := caretColumns(text, int(start.Col), int(lineEnd))
		pw.printf("%s %s%s\n", pw.pal.gutter.Sprintf("%*s |", width, ""), pad, c.Sprint(strings.Repeat("^", marks)))
	}
}

// caretColumns returns the padding before the carets and how many carets to
// draw for the 1-based byte columns [from, to) of line. Display width counts
// wide runes twice; tabs are kept so the padding lines up with the source.
func caretColumns(line string, from, to int) (string, int) {
	from = min(max(from, 1), len(line)+1)
	to = min(max(to, from), len(line)+1)
	var pad strings.Builder
	for _, r := range line[:from-1] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return pad.String(), max(1, runewidth.StringWidth(line[from-1:to-1]))
}

func formatPath(f *source.File, mode PathMode, base string) string {
	return f.FormatPath(mode.String(), base)
}

func (pw *prettyWriter) printf(format string, args ...any) {
	if pw.err == nil {
		_, pw.err = fmt.Fprintf(pw.w, format, args...)
	}
}
