package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"tao/internal/diag"
	"tao/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.tao", []byte("def one = 1\ndef twice = add one one\n"))
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	diag.ReportError(rep, diag.SemaMultipleEntryPoints,
		source.Span{File: id, Start: 16, End: 21},
		"`one` and `twice` are both marked `$[main]`").
		WithNote(source.Span{File: id, Start: 4, End: 7}, "first entry point").
		Emit()
	return bag, fs
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"demo.tao:2:5: error SEM3002: `one` and `twice` are both marked `$[main]`",
		"2 | def twice = add one one",
		"  |     ^^^^^",
		"note: demo.tao:1:5: first entry point",
		"  |     ^^^",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color escapes with Color off:\n%s", out)
	}
}

func TestPrettyHidesNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Color: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("no color escapes:\n%s", buf.String())
	}
}

func TestPrettyUnknownFile(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaNoEntryPoint, source.Span{File: 42}, "nothing"))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if got := buf.String(); got != "<unknown>: error SEM3001: nothing\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPrettyDropped(t *testing.T) {
	bag := diag.NewBag(1)
	for range 3 {
		bag.Add(diag.NewError(diag.SemaNoEntryPoint, source.Span{}, "x"))
	}
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "... 2 more diagnostics not shown") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestCaretColumns(t *testing.T) {
	tests := []struct {
		line     string
		from, to int
		pad      string
		marks    int
	}{
		{"abc def", 5, 8, "    ", 3},
		{"\tx = 1", 2, 3, "\t", 1},
		{"日本 x", 8, 9, "     ", 1},
		{"日本", 1, 4, "", 2},
		{"ab", 3, 3, "  ", 1},
		{"ab", 9, 12, "  ", 1},
	}
	for _, tt := range tests {
		pad, marks := caretColumns(tt.line, tt.from, tt.to)
		if pad != tt.pad || marks != tt.marks {
			t.Fatalf("caretColumns(%q, %d, %d) = %q, %d; want %q, %d",
				tt.line, tt.from, tt.to, pad, marks, tt.pad, tt.marks)
		}
	}
}
