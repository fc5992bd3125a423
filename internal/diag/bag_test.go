package diag

import (
	"testing"

	"tao/internal/source"
)

func TestBagLimitStillReportsErrors(t *testing.T) {
	b := NewBag(1)
	if !b.Add(New(SevWarning, SemaUninhabitedData, source.Span{}, "w")) {
		t.Fatalf("first diagnostic rejected")
	}
	if b.Add(NewError(SemaTypeMismatch, source.Span{}, "e")) {
		t.Fatalf("limit not enforced")
	}
	if !b.HasErrors() {
		t.Fatalf("dropped error must still count")
	}
	if b.Dropped() != 1 {
		t.Fatalf("Dropped = %d", b.Dropped())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	r := BagReporter{Bag: b}
	late := source.Span{File: 0, Start: 10, End: 12}
	early := source.Span{File: 0, Start: 1, End: 2}
	ReportError(r, SemaNoSuchLocal, late, "no local `x`").Emit()
	ReportError(r, SemaNoSuchLocal, late, "no local `x`").Emit()
	ReportWarning(r, SemaUninhabitedData, early, "never").WithNote(late, "here").Emit()
	b.Sort()
	b.Dedup()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Primary != early || len(items[0].Notes) != 1 {
		t.Fatalf("unexpected first item %+v", items[0])
	}
}

func TestDedupReporter(t *testing.T) {
	b := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: b})
	for range 3 {
		r.Report(SemaCannotInfer, SevError, source.Span{Start: 3, End: 4}, "cannot infer", nil)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1, got %d", b.Len())
	}
}

func TestCodeString(t *testing.T) {
	if got := SemaRecursiveAlias.String(); got != "[SEM3018]: Recursive type alias" {
		t.Fatalf("got %q", got)
	}
	if got := Code(1234).Title(); got != "Unknown error" {
		t.Fatalf("got %q", got)
	}
}

func TestWithNoteKeepsOriginal(t *testing.T) {
	base := NewError(SemaNoEntryPoint, source.Span{}, "nothing").WithNote(source.Span{Start: 1}, "a")
	x := base.WithNote(source.Span{Start: 2}, "x")
	y := base.WithNote(source.Span{Start: 3}, "y")
	if len(base.Notes) != 1 || x.Notes[1].Msg != "x" || y.Notes[1].Msg != "y" {
		t.Fatalf("notes alias: base %v, x %v, y %v", base.Notes, x.Notes, y.Notes)
	}
}
