package mono

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/lower"
	"tao/internal/types"
)

func entry(name string, hint *ast.Type, body *ast.Expr, gens ...string) ast.Def {
	d := def(name, hint, body, gens...)
	d.Attrs = []ast.Attr{{Name: ast.Ident{Name: "main"}}}
	return d
}

func def(name string, hint *ast.Type, body *ast.Expr, gens ...string) ast.Def {
	return ast.Def{Name: ast.Ident{Name: name}, Generics: ast.Gens(gens...), Hint: hint, Body: body}
}

func identity() ast.Def {
	return def("id", ast.FuncOf(ast.Named("A"), ast.Named("A")),
		ast.Func(ast.ArmOf(ast.Local("x"), ast.BindName("x"))), "A")
}

func run(t *testing.T, mod *ast.Module, opts Options) (*Program, *diag.Bag, error) {
	t.Helper()
	bag := diag.NewBag(100)
	rep := diag.BagReporter{Bag: bag}
	prog := lower.Check(context.Background(), mod, 0, rep)
	if bag.HasErrors() {
		t.Fatalf("checking failed: %s", spew.Sdump(bag.Items()))
	}
	out, err := Concretize(context.Background(), prog, opts, rep)
	return out, bag, err
}

func mustRun(t *testing.T, mod *ast.Module) *Program {
	t.Helper()
	out, bag, err := run(t, mod, Options{})
	if err != nil {
		t.Fatalf("concretize: %v", err)
	}
	if out == nil || bag.HasErrors() {
		t.Fatalf("no program: %s", spew.Sdump(bag.Items()))
	}
	return out
}

func walk(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	for _, x := range e.Items {
		walk(x, fn)
	}
	for _, x := range e.Tails {
		walk(x, fn)
	}
	for _, f := range e.Fields {
		walk(f.Value, fn)
	}
	for _, a := range e.Arms {
		walk(a.Body, fn)
	}
}

func findKind(t *testing.T, e *Expr, kind ExprKind) *Expr {
	t.Helper()
	var found *Expr
	walk(e, func(x *Expr) {
		if found == nil && x.Kind == kind {
			found = x
		}
	})
	if found == nil {
		t.Fatalf("no %s expression in %s", kind, spew.Sdump(e))
	}
	return found
}

func keysOf(prog *Program, id types.DefID) []Key {
	var out []Key
	for _, k := range prog.SortedKeys() {
		if k.Kind == KeyDef && k.ID == uint32(id) {
			out = append(out, k)
		}
	}
	return out
}

func TestNoEntryPoint(t *testing.T) {
	out, bag, err := run(t, &ast.Module{Defs: []ast.Def{def("x", nil, ast.NatLit(1))}}, Options{})
	if err != nil || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
	if !bag.HasErrors() || bag.Items()[0].Code != diag.SemaNoEntryPoint {
		t.Fatalf("diagnostics = %s", spew.Sdump(bag.Items()))
	}
}

func TestMultipleEntryPoints(t *testing.T) {
	mod := &ast.Module{Defs: []ast.Def{entry("a", nil, ast.NatLit(1)), entry("b", nil, ast.NatLit(2))}}
	out, bag, err := run(t, mod, Options{})
	if err != nil || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
	d := bag.Items()[0]
	if d.Code != diag.SemaMultipleEntryPoints || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %s", spew.Sdump(d))
	}
}

func TestGenericEntryPoint(t *testing.T) {
	main := entry("main", ast.FuncOf(ast.Named("A"), ast.Named("A")),
		ast.Func(ast.ArmOf(ast.Local("x"), ast.BindName("x"))), "A")
	out, bag, err := run(t, &ast.Module{Defs: []ast.Def{main}}, Options{})
	if err != nil || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
	d := bag.Items()[0]
	if d.Code != diag.SemaGenericEntryPoint || len(d.Notes) != 2 {
		t.Fatalf("diagnostic = %s", spew.Sdump(d))
	}
}

func TestCustomEntryAttr(t *testing.T) {
	start := def("start", nil, ast.BoolLit(true))
	start.Attrs = []ast.Attr{{Name: ast.Ident{Name: "start"}}}
	out, _, err := run(t, &ast.Module{Defs: []ast.Def{start}}, Options{EntryAttr: "start"})
	if err != nil || out == nil {
		t.Fatalf("got %v, %v", out, err)
	}
	if d, ok := out.Def(out.Entry); !ok || d.Name != "start" {
		t.Fatalf("entry = %s", spew.Sdump(out.Entry))
	}
}

func TestBoolEntry(t *testing.T) {
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{entry("main", nil, ast.BoolLit(true))}})
	if len(prog.Defs) != 1 {
		t.Fatalf("defs = %d, want 1", len(prog.Defs))
	}
	d, ok := prog.Def(prog.Entry)
	if !ok {
		t.Fatalf("entry %s missing", prog.Entry)
	}
	if d.Body.Kind != ExprLiteral || d.Body.Ty != prog.Types.Prim(types.PrimBool) {
		t.Fatalf("body = %s", spew.Sdump(d.Body))
	}
}

func TestUnreachableDefsAreSkipped(t *testing.T) {
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{
		entry("main", nil, ast.NatLit(1)),
		def("unused", nil, ast.BoolLit(false)),
	}})
	if len(prog.Defs) != 1 {
		t.Fatalf("defs = %v", prog.SortedKeys())
	}
}

func TestSelfRecursionSpecializesOnce(t *testing.T) {
	loop := def("loop", ast.FuncOf(ast.Named("Nat"), ast.Named("Nat")),
		ast.Func(ast.ArmOf(ast.Apply(ast.Local("loop"), ast.Local("n")), ast.BindName("n"))))
	main := entry("main", nil, ast.Apply(ast.Local("loop"), ast.NatLit(3)))
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{loop, main}})
	if len(prog.Defs) != 2 {
		t.Fatalf("defs = %v, want main and loop", prog.SortedKeys())
	}
}

func TestGenericInstantiatedPerArguments(t *testing.T) {
	main := entry("main", nil, ast.Tuple(
		ast.Apply(ast.Local("id"), ast.NatLit(1)),
		ast.Apply(ast.Local("id"), ast.BoolLit(true)),
		ast.Apply(ast.Local("id"), ast.NatLit(2)),
	))
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{identity(), main}})
	keys := keysOf(prog, 1)
	if len(keys) != 2 {
		t.Fatalf("id specializations = %v, want 2", keys)
	}
	nat := prog.Types.Prim(types.PrimNat)
	d, ok := prog.Def(defKey(1, []types.ConTyID{nat}))
	if !ok {
		t.Fatalf("no id[Nat] among %v", keys)
	}
	fn := prog.Types.MustLookup(d.Body.Ty)
	if fn.Kind != types.ConFunc || fn.In != nat || fn.Out != nat {
		t.Fatalf("id[Nat] : %s", prog.Types.Display(d.Body.Ty, prog.Names))
	}
}

func TestParallelJobsMatchSerial(t *testing.T) {
	mod := func() *ast.Module {
		main := entry("main", nil, ast.Tuple(
			ast.Apply(ast.Local("id"), ast.NatLit(1)),
			ast.Apply(ast.Local("id"), ast.BoolLit(true)),
			ast.Apply(ast.Local("twice"), ast.NatLit(2)),
		))
		twice := def("twice", ast.FuncOf(ast.Named("B"), ast.TupleOf(ast.Named("B"), ast.Named("B"))),
			ast.Func(ast.ArmOf(ast.Tuple(ast.Apply(ast.Local("id"), ast.Local("y")), ast.Local("y")), ast.BindName("y"))), "B")
		return &ast.Module{Defs: []ast.Def{identity(), twice, main}}
	}
	serial, _, err := run(t, mod(), Options{Jobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, _, err := run(t, mod(), Options{Jobs: 4})
	if err != nil {
		t.Fatal(err)
	}
	var a, b bytes.Buffer
	if err := Print(&a, serial); err != nil {
		t.Fatal(err)
	}
	if err := Print(&b, parallel); err != nil {
		t.Fatal(err)
	}
	if len(serial.Defs) != 4 || len(parallel.Defs) != len(serial.Defs) {
		t.Fatalf("serial %v, parallel %v", serial.SortedKeys(), parallel.SortedKeys())
	}
	// ids may differ between runs, names and shapes must not
	if strings.Count(a.String(), "\n") != strings.Count(b.String(), "\n") {
		t.Fatalf("serial:\n%s\nparallel:\n%s", a.String(), b.String())
	}
}

func TestRecordAccessHasNoIndirection(t *testing.T) {
	body := ast.Let(ast.Access(ast.Local("r"), "y"),
		ast.LetBinding{Binding: ast.BindName("r"), Value: ast.Record(ast.Field("x", ast.NatLit(1)), ast.Field("y", ast.BoolLit(true)))})
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{entry("main", nil, body)}})
	d, _ := prog.Def(prog.Entry)
	acc := findKind(t, d.Body, ExprAccess)
	if acc.Indirections != 0 || acc.Name != "y" {
		t.Fatalf("access = %s", spew.Sdump(acc))
	}
}

func wrapper() ast.Data {
	return ast.Data{Name: ast.Ident{Name: "Wrap"}, Variants: []ast.Variant{{
		Name:    ast.Ident{Name: "Wrap"},
		Payload: ast.RecordOf(ast.FieldOf("x", ast.Named("Nat"))),
	}}}
}

func TestAccessThroughSingleConstructor(t *testing.T) {
	body := ast.Access(ast.Cons("Wrap", ast.Record(ast.Field("x", ast.NatLit(7)))), "x")
	prog := mustRun(t, &ast.Module{Datas: []ast.Data{wrapper()}, Defs: []ast.Def{entry("main", nil, body)}})
	d, _ := prog.Def(prog.Entry)
	acc := findKind(t, d.Body, ExprAccess)
	if acc.Indirections != 1 {
		t.Fatalf("indirections = %d, want 1", acc.Indirections)
	}
	if acc.Ty != prog.Types.Prim(types.PrimNat) {
		t.Fatalf("access : %s", prog.Types.Display(acc.Ty, prog.Names))
	}

	rec, field, n, ok := prog.FollowFieldAccess(acc.Items[0].Ty, "x")
	if !ok || n != 1 || field != acc.Ty || prog.Types.MustLookup(rec).Kind != types.ConRecord {
		t.Fatalf("FollowFieldAccess = %d, %d, %d, %v", rec, field, n, ok)
	}
	if _, _, _, ok := prog.FollowFieldAccess(acc.Items[0].Ty, "nope"); ok {
		t.Fatalf("missing field found")
	}
}

func showModule() *ast.Module {
	show := ast.Class{Name: ast.Ident{Name: "Show"}, Fields: []ast.ClassField{
		{Name: ast.Ident{Name: "show"}, Type: ast.FuncOf(ast.Named("Self"), ast.ListOf(ast.Named("Char")))},
	}}
	nat := ast.Member{Self: ast.Named("Nat"), Class: ast.Ident{Name: "Show"}, Fields: []ast.MemberField{
		{Name: ast.Ident{Name: "show"}, Body: ast.Func(ast.ArmOf(ast.StrLit("n"), ast.Wildcard()))},
	}}
	boolean := ast.Member{Self: ast.Named("Bool"), Class: ast.Ident{Name: "Show"}, Fields: []ast.MemberField{
		{Name: ast.Ident{Name: "show"}, Body: ast.Func(ast.ArmOf(ast.StrLit("b"), ast.Wildcard()))},
	}}
	return &ast.Module{Classes: []ast.Class{show}, Members: []ast.Member{nat, boolean}}
}

func TestClassAccessResolvesMember(t *testing.T) {
	mod := showModule()
	mod.Defs = []ast.Def{entry("main", nil, ast.Apply(ast.ClassAccess(ast.Named("Bool"), "show"), ast.BoolLit(true)))}
	prog := mustRun(t, mod)

	want := memberKey(2, "show", nil)
	d, ok := prog.Def(want)
	if !ok {
		t.Fatalf("no %s among %v", want, prog.SortedKeys())
	}
	if d.Self != prog.Types.Prim(types.PrimBool) || d.Name != "Bool::show" {
		t.Fatalf("member def = %s", spew.Sdump(d))
	}
	main, _ := prog.Def(prog.Entry)
	g := findKind(t, main.Body, ExprGlobal)
	if g.Key != want {
		t.Fatalf("call goes to %s", g.Key)
	}
}

func TestInstanceLimit(t *testing.T) {
	main := entry("main", nil, ast.Apply(ast.Local("id"), ast.NatLit(1)))
	_, _, err := run(t, &ast.Module{Defs: []ast.Def{identity(), main}}, Options{MaxInstances: 1})
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want InternalError", err)
	}
	if !strings.Contains(ie.Error(), "more than 1 specializations") {
		t.Fatalf("message = %q", ie.Error())
	}
	if !errors.Is(err, ErrTooManyInstances) {
		t.Fatalf("err = %v does not wrap ErrTooManyInstances", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	main := entry("main", nil, ast.Tuple(
		ast.Apply(ast.Local("id"), ast.NatLit(1)),
		ast.Apply(ast.Local("id"), ast.BoolLit(true)),
	))
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{identity(), main}})
	var buf bytes.Buffer
	if err := Export(&buf, prog); err != nil {
		t.Fatal(err)
	}
	got, err := ReadExport(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Entry != prog.Entry || len(got.Defs) != len(prog.Defs) || len(got.Types) != prog.Types.Len() {
		t.Fatalf("exported = %s", spew.Sdump(got))
	}
	for _, et := range got.Types {
		if want := prog.Types.MustLookup(et.ID); want.Kind != et.Ty.Kind {
			t.Fatalf("type %d: %v, want %v", et.ID, et.Ty.Kind, want.Kind)
		}
	}
}

func TestPrint(t *testing.T) {
	prog := mustRun(t, &ast.Module{Defs: []ast.Def{identity(), entry("main", nil, ast.Apply(ast.Local("id"), ast.NatLit(4)))}})
	var buf bytes.Buffer
	if err := Print(&buf, prog); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"entry def#2", "def id [Nat]", "literal 4 : Nat", "| x"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}
