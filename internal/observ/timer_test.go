package observ

import (
	"strings"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	end := tm.Start("lower")
	end("3 defs")
	tm.Start("mono")("")
	ps := tm.Phases()
	if len(ps) != 2 || ps[0].Name != "lower" || ps[0].Note != "3 defs" {
		t.Fatalf("phases = %+v", ps)
	}
	s := tm.Summary()
	if !strings.Contains(s, "lower") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
	if r := tm.Report(); len(r.Phases) != 2 || r.Phases[1].Name != "mono" {
		t.Fatalf("report = %+v", r)
	}
}
