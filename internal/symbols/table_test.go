package symbols

import (
	"errors"
	"testing"

	"tao/internal/ast"
	"tao/internal/source"
	"tao/internal/types"
)

func TestTableDuplicates(t *testing.T) {
	table := NewTable()
	first, err := table.AddDef(Def{Name: "f", Span: source.Span{Start: 1, End: 2}})
	if err != nil || first == 0 {
		t.Fatalf("AddDef = %d, %v", first, err)
	}
	_, err = table.AddDef(Def{Name: "f", Span: source.Span{Start: 5, End: 6}})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Previous.Start != 1 || dup.Span.Start != 5 {
		t.Fatalf("unexpected spans %+v", dup)
	}

	if _, err := table.AddData(Data{Name: "T"}); err != nil {
		t.Fatalf("AddData: %v", err)
	}
	if _, err := table.AddAlias(Alias{Name: "T"}); err == nil {
		t.Fatalf("alias and data share the type namespace")
	}
}

func TestTableLookups(t *testing.T) {
	table := NewTable()
	maybe, _ := table.AddData(Data{Name: "Maybe", Cons: []Cons{{Name: "Just", Payload: 7}, {Name: "None", Payload: 8}}})
	if got, ok := table.LookupCons("None"); !ok || got != maybe {
		t.Fatalf("LookupCons = %d, %v", got, ok)
	}
	if p, ok := table.ConsPayload(maybe, "Just"); !ok || p != 7 {
		t.Fatalf("ConsPayload = %d, %v", p, ok)
	}
	if got := table.DataPayloads(maybe); len(got) != 2 {
		t.Fatalf("DataPayloads = %v", got)
	}

	eq, _ := table.AddClass(Class{Name: "Eq", Fields: []ClassField{{Name: "eq"}}})
	ord, _ := table.AddClass(Class{Name: "Ord", Fields: []ClassField{{Name: "eq"}, {Name: "less"}}, Assoc: []ast.Ident{{Name: "Key"}}})
	if got := table.ClassesWithField("eq"); len(got) != 2 || got[0] != eq || got[1] != ord {
		t.Fatalf("ClassesWithField = %v", got)
	}
	if got := table.ClassesWithAssoc("Key"); len(got) != 1 || got[0] != ord {
		t.Fatalf("ClassesWithAssoc = %v", got)
	}
	m := table.AddMember(Member{Class: ord})
	table.AddMember(Member{Class: eq})
	if got := table.MembersOf(ord); len(got) != 1 || got[0] != m {
		t.Fatalf("MembersOf = %v", got)
	}
	var names types.Names = table
	if names.ClassName(ord) != "Ord" || names.DataName(maybe) != "Maybe" {
		t.Fatalf("names not resolved")
	}
}
