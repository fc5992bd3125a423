package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestJSONOutput(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("unexpected output: %s", spew.Sdump(out))
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SEM3002" || d.Title != "Multiple entry points" {
		t.Fatalf("header: %s", spew.Sdump(d))
	}
	if d.Location.File != "demo.tao" || d.Location.StartLine != 2 || d.Location.StartCol != 5 || d.Location.EndCol != 10 {
		t.Fatalf("location: %s", spew.Sdump(d.Location))
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "first entry point" || d.Notes[0].Location.StartLine != 1 {
		t.Fatalf("notes: %s", spew.Sdump(d.Notes))
	}
}

func TestJSONWithoutPositionsOrNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	d := out.Diagnostics[0]
	if d.Location.StartLine != 0 || d.Location.StartByte != 16 || d.Location.EndByte != 21 {
		t.Fatalf("location: %s", spew.Sdump(d.Location))
	}
	if d.Notes != nil {
		t.Fatalf("notes should be omitted: %s", spew.Sdump(d.Notes))
	}
}

func TestJSONMax(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(bag.Items()[0])
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("Count = %d, want 1", out.Count)
	}
}
