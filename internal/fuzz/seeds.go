package fuzztests

import (
	"bytes"
	"testing"

	"tao/internal/ast"
)

// maxFuzzInput keeps single inputs small enough to check in milliseconds.
const maxFuzzInput = 16 << 10

func mainDef(body *ast.Expr) ast.Def {
	return ast.Def{
		Name:  ast.Ident{Name: "main"},
		Attrs: []ast.Attr{{Name: ast.Ident{Name: "main"}}},
		Body:  body,
	}
}

func seedModules() []*ast.Module {
	id := ast.Def{
		Name:     ast.Ident{Name: "id"},
		Generics: ast.Gens("A"),
		Hint:     ast.FuncOf(ast.Named("A"), ast.Named("A")),
		Body:     ast.Func(ast.ArmOf(ast.Local("x"), ast.BindName("x"))),
	}
	return []*ast.Module{
		{Defs: []ast.Def{mainDef(ast.BoolLit(true))}},
		{Defs: []ast.Def{id, mainDef(ast.Apply(ast.Local("id"), ast.NatLit(3)))}},
		{Defs: []ast.Def{mainDef(ast.Access(ast.Record(ast.Field("a", ast.NatLit(1))), "a"))}},
		{Defs: []ast.Def{mainDef(ast.If(ast.BoolLit(false), ast.StrLit("a"), ast.StrLit("b")))}},
		{Defs: []ast.Def{mainDef(ast.List(ast.NatLit(1), ast.NatLit(2)))}},
		{Defs: []ast.Def{mainDef(ast.Local("missing"))}},
	}
}

func addSeeds(f *testing.F) {
	for _, m := range seedModules() {
		var buf bytes.Buffer
		if err := ast.Encode(&buf, m, ast.FormatJSON); err != nil {
			f.Fatalf("encode seed: %v", err)
		}
		f.Add(buf.Bytes())
	}
	f.Add([]byte(`{"defs":[{"name":{"name":"main"}}]}`))
	f.Add([]byte(`{}`))
}
