package ast

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func sampleModule() *Module {
	return &Module{
		Source: Source{Path: "main.tao", Text: "def main = 1 + 2"},
		Defs: []Def{{
			Name:  Ident{Name: "main", Span: Span{4, 8}},
			Attrs: []Attr{{Name: Ident{Name: "main"}}},
			Body:  Binary(BinAdd, NatLit(1), NatLit(2)),
		}},
		Datas: []Data{{
			Name:     Ident{Name: "Maybe"},
			Generics: Gens("A"),
			Variants: []Variant{
				{Name: Ident{Name: "Just"}, Payload: Named("A")},
				{Name: Ident{Name: "None"}, Payload: TupleOf()},
			},
		}},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatMsgpack, FormatJSON} {
		var buf bytes.Buffer
		in := sampleModule()
		if err := Encode(&buf, in, format); err != nil {
			t.Fatalf("%s: encode: %v", format, err)
		}
		out, err := Decode(&buf, format)
		if err != nil {
			t.Fatalf("%s: decode: %v", format, err)
		}
		if out.Defs[0].Name != in.Defs[0].Name || out.Defs[0].Body.BinOp != BinAdd {
			t.Fatalf("%s: def mismatch:\n%s", format, spew.Sdump(out.Defs[0]))
		}
		if got := out.Defs[0].Body.Rhs.Lit.Nat; got != 2 {
			t.Fatalf("%s: rhs literal = %d", format, got)
		}
		if !reflect.DeepEqual(out.Datas[0].Generics, in.Datas[0].Generics) {
			t.Fatalf("%s: generics mismatch:\n%s", format, spew.Sdump(out.Datas[0].Generics))
		}
		if _, ok := FindAttr(out.Defs[0].Attrs, "main"); !ok {
			t.Fatalf("%s: main attribute lost", format)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"dir/b.TAST", FormatMsgpack, true},
		{"c.mpk", FormatMsgpack, true},
		{"d.tao", 0, false},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("%s: got %v, %v", tt.path, got, err)
		}
	}
}
