package testkit

import (
	"context"
	"strings"
	"testing"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/lower"
	"tao/internal/source"
)

func checked(t *testing.T, mod *ast.Module) *hir.Program {
	t.Helper()
	bag := diag.NewBag(50)
	prog := lower.Check(context.Background(), mod, 0, diag.BagReporter{Bag: bag})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return prog
}

func TestCheckProgramAcceptsCheckedModule(t *testing.T) {
	prog := checked(t, &ast.Module{Defs: []ast.Def{
		{Name: ast.Ident{Name: "pair"}, Body: ast.Tuple(ast.BoolLit(true), ast.NatLit(2))},
		{Name: ast.Ident{Name: "first"}, Body: ast.Match(
			[]*ast.Expr{ast.Local("pair")},
			ast.ArmOf(ast.Local("a"), ast.TuplePat(ast.BindName("a"), ast.Wildcard())),
		)},
	}})
	if err := CheckProgram(prog); err != nil {
		t.Fatalf("CheckProgram: %v", err)
	}
}

func TestCheckProgramReportsBrokenNodes(t *testing.T) {
	prog := checked(t, &ast.Module{Defs: []ast.Def{{Name: ast.Ident{Name: "one"}, Body: ast.NatLit(1)}}})
	for id, body := range prog.Defs {
		prog.Defs[id] = &hir.Expr{
			Kind: hir.ExprTuple,
			Span: source.Span{File: body.Span.File, Start: 50, End: 60},
			Ty:   body.Ty,
			Data: hir.TupleData{Items: []*hir.Expr{{Kind: hir.ExprError, Span: body.Span}}},
		}
	}
	err := CheckProgram(prog)
	if err == nil {
		t.Fatal("want errors")
	}
	for _, want := range []string{"error expression", "outside module"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("missing %q in %v", want, err)
		}
	}
}

func TestCheckProgramNil(t *testing.T) {
	if CheckProgram(nil) == nil {
		t.Fatal("want error for nil program")
	}
}
