package lower

import (
	"context"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/types"
)

func check(t *testing.T, mod *ast.Module) (*hir.Program, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(100)
	prog := Check(context.Background(), mod, 0, diag.BagReporter{Bag: bag})
	return prog, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func noErrors(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", spew.Sdump(bag.Items()))
	}
}

func wantCode(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("want %v, got %v", code, codes(bag))
	return diag.Diagnostic{}
}

func def(name string, hint *ast.Type, body *ast.Expr, gens ...string) ast.Def {
	return ast.Def{Name: ast.Ident{Name: name}, Generics: ast.Gens(gens...), Hint: hint, Body: body}
}

func defTy(t *testing.T, prog *hir.Program, name string) types.Ty {
	t.Helper()
	id, ok := prog.Table.LookupDef(name)
	if !ok {
		t.Fatalf("no def %s", name)
	}
	ty := prog.Table.Def(id).BodyTy
	if ty == types.NoTyID {
		t.Fatalf("def %s has no type", name)
	}
	return prog.Store.Get(ty)
}

func isPrim(prog *hir.Program, ty types.TyID, p types.Prim) bool {
	t := prog.Store.Get(ty)
	return t.Kind == types.KindPrim && t.Prim == p
}

func TestBoolEntry(t *testing.T) {
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, ast.BoolLit(true))}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Kind != types.KindPrim || got.Prim != types.PrimBool {
		t.Fatalf("main : %+v, want Bool", got)
	}
}

func TestGenericInstantiation(t *testing.T) {
	id := def("id", ast.FuncOf(ast.Named("A"), ast.Named("A")),
		ast.Func(ast.ArmOf(ast.Local("x"), ast.BindName("x"))), "A")
	main := def("main", nil, ast.Apply(ast.Local("id"), ast.NatLit(5)))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{id, main}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimNat {
		t.Fatalf("main : %+v, want Nat", got)
	}
	mainID, _ := prog.Table.LookupDef("main")
	body := prog.Defs[mainID]
	app, ok := body.Data.(hir.ApplyData)
	if !ok {
		t.Fatalf("main body is %s", body.Kind)
	}
	g, ok := app.Func.Data.(hir.GlobalData)
	if !ok || len(g.Gens) != 1 || !isPrim(prog, g.Gens[0], types.PrimNat) {
		t.Fatalf("global = %s", spew.Sdump(app.Func.Data))
	}
}

func TestDefInferredOnDemand(t *testing.T) {
	main := def("main", nil, ast.Binary(ast.BinAdd, ast.Local("two"), ast.NatLit(1)))
	two := def("two", nil, ast.NatLit(2))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{main, two}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimNat {
		t.Fatalf("main : %+v, want Nat", got)
	}
}

func TestMutualRecursionNeedsHint(t *testing.T) {
	_, bag := check(t, &ast.Module{Defs: []ast.Def{
		def("a", nil, ast.Local("b")),
		def("b", nil, ast.Local("a")),
	}})
	d := wantCode(t, bag, diag.SemaDefTypeNotSpecified)
	if len(d.Notes) != 1 {
		t.Fatalf("notes = %v", d.Notes)
	}
}

func TestSelfRecursionWithHint(t *testing.T) {
	loop := def("loop", ast.FuncOf(ast.Named("Nat"), ast.Named("Nat")),
		ast.Func(ast.ArmOf(ast.Apply(ast.Local("loop"), ast.Local("n")), ast.BindName("n"))))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{loop}})
	noErrors(t, bag)
	id, _ := prog.Table.LookupDef("loop")
	var found bool
	hir.WalkAll(prog.Defs[id], func(e *hir.Expr) {
		if g, ok := e.Data.(hir.GlobalData); ok && g.Def == id {
			found = true
		}
	}, nil)
	if !found {
		t.Fatalf("recursive call is not a global reference")
	}
}

func TestWrongNumberOfGenerics(t *testing.T) {
	maybe := ast.Data{Name: ast.Ident{Name: "Maybe"}, Generics: ast.Gens("A"), Variants: []ast.Variant{
		{Name: ast.Ident{Name: "Just"}, Payload: ast.Named("A")},
		{Name: ast.Ident{Name: "None"}},
	}}
	x := def("x", ast.Named("Maybe", ast.Named("Nat"), ast.Named("Nat")), nil)
	_, bag := check(t, &ast.Module{Datas: []ast.Data{maybe}, Defs: []ast.Def{x}})
	d := wantCode(t, bag, diag.SemaWrongNumberOfGenerics)
	if len(d.Notes) != 1 || d.Message != "expected 1 generic argument, found 2" {
		t.Fatalf("diagnostic = %s", spew.Sdump(d))
	}
}

func TestRecursiveAlias(t *testing.T) {
	alias := ast.Alias{Name: ast.Ident{Name: "T"}, Type: ast.ListOf(ast.Named("T"))}
	_, bag := check(t, &ast.Module{Aliases: []ast.Alias{alias}})
	wantCode(t, bag, diag.SemaRecursiveAlias)
}

func TestAliasInstantiation(t *testing.T) {
	pair := ast.Alias{Name: ast.Ident{Name: "Pair"}, Generics: ast.Gens("A"), Type: ast.TupleOf(ast.Named("A"), ast.Named("A"))}
	x := def("x", ast.Named("Pair", ast.Named("Bool")), ast.Tuple(ast.BoolLit(true), ast.BoolLit(false)))
	prog, bag := check(t, &ast.Module{Aliases: []ast.Alias{pair}, Defs: []ast.Def{x}})
	noErrors(t, bag)
	if got := defTy(t, prog, "x"); got.Kind != types.KindTuple || !isPrim(prog, got.Items[1], types.PrimBool) {
		t.Fatalf("x : %+v", got)
	}
}

func TestNoSuchLocal(t *testing.T) {
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, ast.Local("nope"))}})
	wantCode(t, bag, diag.SemaNoSuchLocal)
}

func TestArmArity(t *testing.T) {
	f := ast.Func(
		ast.ArmOf(ast.NatLit(1), ast.BindName("x")),
		ast.ArmOf(ast.NatLit(2), ast.BindName("x"), ast.BindName("y")),
	)
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("f", nil, f)}})
	wantCode(t, bag, diag.SemaWrongNumberOfParams)
}

func TestNoBranches(t *testing.T) {
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("f", nil, ast.Func())}})
	wantCode(t, bag, diag.SemaNoBranches)
}

func TestCurriedFunction(t *testing.T) {
	add := ast.Func(ast.ArmOf(ast.Binary(ast.BinAdd, ast.Local("a"), ast.Local("b")), ast.BindName("a"), ast.BindName("b")))
	main := def("main", nil, ast.Apply(ast.Local("add"), ast.NatLit(1), ast.NatLit(2)))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{
		def("add", ast.FuncOf(ast.Named("Nat"), ast.FuncOf(ast.Named("Nat"), ast.Named("Nat"))), add),
		main,
	}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimNat {
		t.Fatalf("main : %+v", got)
	}
	id, _ := prog.Table.LookupDef("add")
	if k := prog.Defs[id].Kind; k != hir.ExprFunc {
		t.Fatalf("add body = %s, want Func", k)
	}
	inner := prog.Defs[id].Data.(hir.FuncData).Body
	if inner.Kind != hir.ExprFunc {
		t.Fatalf("second parameter is %s, want Func", inner.Kind)
	}
}

func TestRecordAccessThroughLet(t *testing.T) {
	body := ast.Let(ast.Access(ast.Local("r"), "y"),
		ast.LetBinding{Binding: ast.BindName("r"), Value: ast.Record(ast.Field("x", ast.NatLit(1)), ast.Field("y", ast.BoolLit(true)))})
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimBool {
		t.Fatalf("main : %+v, want Bool", got)
	}
}

func TestDuplicateRecordField(t *testing.T) {
	rec := ast.Record(ast.Field("x", ast.NatLit(1)), ast.Field("x", ast.NatLit(2)))
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, rec)}})
	wantCode(t, bag, diag.SemaDuplicateField)
}

func TestIfConditionMustBeBool(t *testing.T) {
	body := ast.If(ast.NatLit(1), ast.BoolLit(true), ast.BoolLit(false))
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	wantCode(t, bag, diag.SemaTypeMismatch)
}

func TestEqualityWithoutEqClass(t *testing.T) {
	body := ast.Binary(ast.BinEq, ast.NatLit(1), ast.NatLit(2))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimBool {
		t.Fatalf("main : %+v, want Bool", got)
	}
}

func TestPropagateNeedsBasin(t *testing.T) {
	body := ast.Unary(ast.UnaryPropagate, ast.NatLit(1))
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	wantCode(t, bag, diag.SemaNoBasin)
}

func TestHandleSuspend(t *testing.T) {
	yield := ast.Effect{Name: ast.Ident{Name: "Yield"}, Send: ast.Named("Nat"), Recv: ast.Named("Bool")}
	body := ast.Handle(ast.Block(ast.Intrinsic("suspend", ast.NatLit(1))), "Yield", nil, ast.BindName("s"), ast.BoolLit(true))
	prog, bag := check(t, &ast.Module{Effects: []ast.Effect{yield}, Defs: []ast.Def{def("main", nil, body)}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimBool {
		t.Fatalf("main : %+v, want Bool", got)
	}
	id, _ := prog.Table.LookupDef("main")
	h, ok := prog.Defs[id].Data.(hir.HandleData)
	if !ok {
		t.Fatalf("main body = %s", prog.Defs[id].Kind)
	}
	if e := prog.Store.Effect(h.Eff); !e.Known || e.Decl != 1 {
		t.Fatalf("handled effect = %+v", e)
	}
}

func TestUnknownIntrinsic(t *testing.T) {
	_, bag := check(t, &ast.Module{Defs: []ast.Def{
		def("a", nil, ast.Intrinsic("launch_missiles")),
		def("b", nil, ast.Intrinsic("len_list")),
	}})
	n := 0
	for _, c := range codes(bag) {
		if c == diag.SemaInvalidIntrinsic {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("want 2 invalid intrinsics, got %v", codes(bag))
	}
}

func TestStringLiteralNormalized(t *testing.T) {
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, ast.StrLit("e\u0301"))}})
	noErrors(t, bag)
	id, _ := prog.Table.LookupDef("main")
	lit := prog.Defs[id].Data.(hir.LiteralData).Lit
	if lit.Str != "\u00e9" {
		t.Fatalf("literal = %q, want NFC form", lit.Str)
	}
	if got := defTy(t, prog, "main"); got.Kind != types.KindList || !isPrim(prog, got.Elem, types.PrimChar) {
		t.Fatalf("main : %+v, want [Char]", got)
	}
}

func TestAddPattern(t *testing.T) {
	add := ast.Bind(&ast.Pat{Kind: ast.PatAdd, BinOp: ast.BinAdd, Inner: ast.BindName("n"), Lit: &ast.Literal{Kind: ast.LitNat, Nat: 1}})
	body := ast.Match([]*ast.Expr{ast.NatLit(3)}, ast.ArmOf(ast.Local("n"), add), ast.ArmOf(ast.NatLit(0), ast.Wildcard()))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimNat {
		t.Fatalf("main : %+v", got)
	}

	sub := ast.Bind(&ast.Pat{Kind: ast.PatAdd, BinOp: ast.BinSub, Inner: ast.BindName("n"), Lit: &ast.Literal{Kind: ast.LitNat, Nat: 1}})
	body = ast.Match([]*ast.Expr{ast.NatLit(3)}, ast.ArmOf(ast.Local("n"), sub))
	_, bag = check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	wantCode(t, bag, diag.SemaPatternNotSupported)
}

func TestMultiScrutineeMatch(t *testing.T) {
	body := ast.Match([]*ast.Expr{ast.NatLit(1), ast.BoolLit(true)},
		ast.ArmOf(ast.Local("b"), ast.BindName("a"), ast.BindName("b")))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", nil, body)}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimBool {
		t.Fatalf("main : %+v", got)
	}
}

func TestConstructAndDeconstruct(t *testing.T) {
	maybe := ast.Data{Name: ast.Ident{Name: "Maybe"}, Generics: ast.Gens("A"), Variants: []ast.Variant{
		{Name: ast.Ident{Name: "Just"}, Payload: ast.Named("A")},
		{Name: ast.Ident{Name: "None"}},
	}}
	body := ast.Match([]*ast.Expr{ast.Cons("Just", ast.BoolLit(true))},
		ast.ArmOf(ast.Local("x"), ast.Decons("Just", ast.BindName("x"))),
		ast.ArmOf(ast.BoolLit(false), ast.Decons("None", nil)))
	prog, bag := check(t, &ast.Module{Datas: []ast.Data{maybe}, Defs: []ast.Def{def("main", nil, body)}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Prim != types.PrimBool {
		t.Fatalf("main : %+v", got)
	}
	_, bag = check(t, &ast.Module{Defs: []ast.Def{def("main", nil, ast.Cons("Nope", nil))}})
	wantCode(t, bag, diag.SemaNoSuchCons)
}

func TestUninhabitedData(t *testing.T) {
	loop := ast.Data{Name: ast.Ident{Name: "Loop"}, Variants: []ast.Variant{{Name: ast.Ident{Name: "Loop"}, Payload: ast.Named("Loop")}}}
	_, bag := check(t, &ast.Module{Datas: []ast.Data{loop}})
	d := wantCode(t, bag, diag.SemaUninhabitedData)
	if d.Severity != diag.SevWarning {
		t.Fatalf("severity = %v", d.Severity)
	}
}

func TestDuplicateDef(t *testing.T) {
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("a", nil, ast.NatLit(1)), def("a", nil, ast.NatLit(2))}})
	wantCode(t, bag, diag.SemaDuplicateItem)
}

func showModule(fields ...ast.MemberField) *ast.Module {
	show := ast.Class{Name: ast.Ident{Name: "Show"}, Fields: []ast.ClassField{
		{Name: ast.Ident{Name: "show"}, Type: ast.FuncOf(ast.Named("Self"), ast.ListOf(ast.Named("Char")))},
	}}
	member := ast.Member{Self: ast.Named("Nat"), Class: ast.Ident{Name: "Show"}, Fields: fields}
	return &ast.Module{Classes: []ast.Class{show}, Members: []ast.Member{member}}
}

func TestClassMemberAccess(t *testing.T) {
	mod := showModule(ast.MemberField{Name: ast.Ident{Name: "show"}, Body: ast.Func(ast.ArmOf(ast.StrLit("n"), ast.Wildcard()))})
	mod.Defs = []ast.Def{def("main", nil, ast.Apply(ast.ClassAccess(ast.Named("Nat"), "show"), ast.NatLit(3)))}
	prog, bag := check(t, mod)
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Kind != types.KindList {
		t.Fatalf("main : %+v, want [Char]", got)
	}
	id, _ := prog.Table.LookupDef("main")
	ca := prog.Defs[id].Data.(hir.ApplyData).Func.Data.(hir.ClassAccessData)
	if ca.Class != 1 || !isPrim(prog, ca.Self, types.PrimNat) {
		t.Fatalf("class access = %s", spew.Sdump(ca))
	}
	if _, ok := prog.MemberField(1, "show"); !ok {
		t.Fatalf("member field body not recorded")
	}
}

func TestMissingMemberField(t *testing.T) {
	_, bag := check(t, showModule())
	wantCode(t, bag, diag.SemaMissingMemberField)

	_, bag = check(t, showModule(
		ast.MemberField{Name: ast.Ident{Name: "show"}, Body: ast.Func(ast.ArmOf(ast.StrLit("n"), ast.Wildcard()))},
		ast.MemberField{Name: ast.Ident{Name: "extra"}, Body: ast.NatLit(1)},
	))
	wantCode(t, bag, diag.SemaNoSuchClassField)
}

func TestSelfOutsideClass(t *testing.T) {
	_, bag := check(t, &ast.Module{Defs: []ast.Def{def("x", ast.Named("Self"), ast.BoolLit(true))}})
	wantCode(t, bag, diag.SemaSelfNotValidHere)
}

func TestDeclarationOrderDoesNotMatter(t *testing.T) {
	a := []ast.Def{def("x", nil, ast.NatLit(1)), def("y", nil, ast.Local("x"))}
	b := []ast.Def{a[1], a[0]}
	var got [][]diag.Code
	for _, defs := range [][]ast.Def{a, b} {
		_, bag := check(t, &ast.Module{Defs: defs})
		got = append(got, codes(bag))
	}
	if !slices.Equal(got[0], got[1]) {
		t.Fatalf("diagnostics depend on order: %v vs %v", got[0], got[1])
	}
}

func TestRecursiveAliasIndirect(t *testing.T) {
	a := ast.Alias{Name: ast.Ident{Name: "A"}, Type: ast.ListOf(ast.Named("B"))}
	b := ast.Alias{Name: ast.Ident{Name: "B"}, Type: ast.Named("A")}
	prog, bag := check(t, &ast.Module{Aliases: []ast.Alias{a, b}})
	wantCode(t, bag, diag.SemaRecursiveAlias)
	id, ok := prog.Table.LookupAlias("B")
	if !ok {
		t.Fatalf("no alias B")
	}
	got := prog.Store.Get(prog.Table.Alias(id).Ty)
	if got.Kind != types.KindError || got.Reason != types.ReasonRecursive {
		t.Fatalf("B = %s, want a recursive error type", spew.Sdump(got))
	}
}

func TestDefWithoutBody(t *testing.T) {
	tests := []struct {
		name string
		defs []ast.Def
	}{
		{"entry", []ast.Def{def("main", ast.Named("Bool"), nil)}},
		{"callee", []ast.Def{
			def("ext", ast.Named("Bool"), nil),
			def("main", nil, ast.Local("ext")),
		}},
	}
	for _, tt := range tests {
		_, bag := check(t, &ast.Module{Defs: tt.defs})
		d := wantCode(t, bag, diag.SemaMalformedTree)
		if d.Message != "definition `"+tt.defs[0].Name.Name+"` has no body" {
			t.Fatalf("%s: message %q", tt.name, d.Message)
		}
	}
}

func TestMalformedNodesAreReported(t *testing.T) {
	one := ast.NatLit(1)
	arm := func(p *ast.Pat) *ast.Expr {
		return ast.Match([]*ast.Expr{one}, ast.ArmOf(ast.BoolLit(true), ast.Bind(p)))
	}
	tests := []struct {
		name string
		hint *ast.Type
		body *ast.Expr
	}{
		{"nil tuple item", nil, ast.Tuple(ast.BoolLit(true), nil)},
		{"error expr", nil, &ast.Expr{Kind: ast.ExprError}},
		{"literal without value", nil, &ast.Expr{Kind: ast.ExprLiteral}},
		{"error type", &ast.Type{Kind: ast.TypeError}, ast.BoolLit(true)},
		{"error pattern", nil, arm(&ast.Pat{Kind: ast.PatError})},
		{"single pattern without inner", nil, arm(&ast.Pat{Kind: ast.PatSingle})},
		{"add pattern without binding", nil, arm(&ast.Pat{Kind: ast.PatAdd})},
		{"literal pattern without value", nil, arm(&ast.Pat{Kind: ast.PatLiteral})},
	}
	for _, tt := range tests {
		_, bag := check(t, &ast.Module{Defs: []ast.Def{def("main", tt.hint, tt.body)}})
		if !slices.Contains(codes(bag), diag.SemaMalformedTree) {
			t.Fatalf("%s: want %v, got %v", tt.name, diag.SemaMalformedTree, codes(bag))
		}
	}
}

func TestLangDefInstantiates(t *testing.T) {
	pure := def("pure", ast.FuncOf(ast.Named("A"), ast.Named("A")),
		ast.Func(ast.ArmOf(ast.Local("x"), ast.BindName("x"))), "A")
	pure.Attrs = []ast.Attr{{Name: ast.Ident{Name: "lang"}, Args: []ast.Ident{{Name: "io_unit"}}}}
	main := def("main", nil, ast.Apply(ast.LangDef("io_unit"), ast.BoolLit(true)))
	prog, bag := check(t, &ast.Module{Defs: []ast.Def{pure, main}})
	noErrors(t, bag)
	if got := defTy(t, prog, "main"); got.Kind != types.KindPrim || got.Prim != types.PrimBool {
		t.Fatalf("main : %+v, want Bool", got)
	}

	_, bag = check(t, &ast.Module{Defs: []ast.Def{def("main", nil, ast.LangDef("io_bind"))}})
	wantCode(t, bag, diag.SemaMissingLangItem)
}
