package infer

import (
	"testing"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/source"
	"tao/internal/symbols"
	"tao/internal/types"
)

type fixture struct {
	store *types.Store
	table *symbols.Table
	bag   *diag.Bag
}

func newFixture() *fixture {
	return &fixture{store: types.NewStore(), table: symbols.NewTable(), bag: diag.NewBag(100)}
}

func (f *fixture) session() *Infer {
	if !f.store.GenScopesChecked() {
		f.store.CheckGenScopes(func(name string) (types.ClassID, bool) { return f.table.LookupClass(name) }, diag.BagReporter{Bag: f.bag})
	}
	return New(Env{Store: f.store, Table: f.table, Reporter: diag.BagReporter{Bag: f.bag}}, types.NoGenScope)
}

func (f *fixture) codes() []diag.Code {
	var out []diag.Code
	for _, d := range f.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func sp(n uint32) source.Span { return source.Span{Start: n, End: n + 1} }

func TestFlowLinksUnknowns(t *testing.T) {
	f := newFixture()
	in := f.session()
	a := in.Unknown(sp(1))
	b := in.Unknown(sp(2))
	nat := in.Insert(sp(3), Prim(types.PrimNat))
	in.MakeFlow(a, b, At(sp(1)))
	in.MakeFlow(b, nat, At(sp(2)))
	in.Solve()
	if got := in.Info(a); got.Kind != InfoPrim || got.Prim != types.PrimNat {
		t.Fatalf("a = %+v, want Nat", got)
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", f.codes())
	}
}

func TestFlowMismatchReported(t *testing.T) {
	f := newFixture()
	in := f.session()
	nat := in.Insert(sp(1), Prim(types.PrimNat))
	list := in.Insert(sp(2), List(in.Insert(sp(2), Prim(types.PrimChar))))
	in.MakeFlow(nat, list, Because(sp(5), "Branches must produce compatible values"))
	items := f.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaTypeMismatch {
		t.Fatalf("diagnostics = %v", f.codes())
	}
	if items[0].Primary != sp(5) {
		t.Fatalf("primary span = %v", items[0].Primary)
	}
	want := "Branches must produce compatible values: type mismatch between `Nat` and `[Char]`"
	if items[0].Message != want {
		t.Fatalf("message = %q", items[0].Message)
	}
}

func TestOccursCheck(t *testing.T) {
	f := newFixture()
	in := f.session()
	v := in.Unknown(sp(1))
	l := in.Insert(sp(2), List(v))
	in.MakeFlow(v, l, At(sp(3)))
	if got := f.codes(); len(got) != 1 || got[0] != diag.SemaRecursiveType {
		t.Fatalf("diagnostics = %v", got)
	}
	in.Solve()
	id := in.Reify(l)
	elem := f.store.Get(f.store.Get(id).Elem)
	if elem.Kind != types.KindError || elem.Reason != types.ReasonRecursive {
		t.Fatalf("element = %+v, want recursive error", elem)
	}
}

func TestAccessWaitsForRecord(t *testing.T) {
	f := newFixture()
	in := f.session()
	r := in.Unknown(sp(1))
	out := in.Unknown(sp(2))
	in.MakeAccess(r, "x", sp(2), out)
	rec := in.Insert(sp(3), Record([]Field{
		{Name: "y", Var: in.Insert(sp(3), Prim(types.PrimBool))},
		{Name: "x", Var: in.Insert(sp(3), Prim(types.PrimReal))},
	}))
	in.MakeFlow(rec, r, At(sp(3)))
	in.Solve()
	if got := in.Display(out); got != "Real" {
		t.Fatalf("field type = %s", got)
	}
	if in.Display(rec) != "{x: Real, y: Bool}" {
		t.Fatalf("record display = %s", in.Display(rec))
	}
}

func TestAccessUnwrapsSingleConstructorData(t *testing.T) {
	f := newFixture()
	scope := f.store.InsertGenScope(types.GenScope{Params: []types.GenParam{{Name: "A"}}})
	gen := f.store.Insert(sp(0), types.MakeGen(scope, 0))
	payload := f.store.Insert(sp(0), types.MakeRecord([]types.Field{{Name: "value", Ty: gen}}))
	box, err := f.table.AddData(symbols.Data{Name: "Box", GenScope: scope, Cons: []symbols.Cons{{Name: "Box", Payload: payload}}})
	if err != nil {
		t.Fatal(err)
	}
	in := f.session()
	v := in.Insert(sp(1), Data(box, []TyVar{in.Insert(sp(1), Prim(types.PrimChar))}))
	out := in.Unknown(sp(2))
	in.MakeAccess(v, "value", sp(2), out)
	in.MakeAccess(v, "missing", sp(3), in.Unknown(sp(3)))
	in.Solve()
	if got := in.Display(out); got != "Char" {
		t.Fatalf("unwrapped field = %s", got)
	}
	if got := f.codes(); len(got) != 1 || got[0] != diag.SemaNoSuchField {
		t.Fatalf("diagnostics = %v", got)
	}
}

func TestAccessRefusesSelfReferentialUnwrap(t *testing.T) {
	f := newFixture()
	// data Loop = Loop Loop
	loop, _ := f.table.AddData(symbols.Data{Name: "Loop"})
	self := f.store.Insert(sp(0), types.MakeData(loop, nil))
	f.table.Data(loop).Cons = []symbols.Cons{{Name: "Loop", Payload: self}}
	in := f.session()
	v := in.Insert(sp(1), Data(loop, nil))
	in.MakeAccess(v, "x", sp(2), in.Unknown(sp(2)))
	in.Solve()
	if got := f.codes(); len(got) != 1 || got[0] != diag.SemaNoSuchField {
		t.Fatalf("diagnostics = %v", got)
	}
}

func TestBinaryTableAndDefaulting(t *testing.T) {
	f := newFixture()
	in := f.session()
	nat := func() TyVar { return in.Insert(sp(1), Prim(types.PrimNat)) }

	sub := in.Unknown(sp(2))
	in.MakeBinary(ast.BinSub, nat(), nat(), sub, sp(2))

	x := in.Unknown(sp(3))
	sum := in.Unknown(sp(3))
	in.MakeBinary(ast.BinAdd, x, nat(), sum, sp(3))

	cmp := in.Unknown(sp(4))
	in.MakeBinary(ast.BinLess, in.Insert(sp(4), Prim(types.PrimChar)), in.Insert(sp(4), Prim(types.PrimChar)), cmp, sp(4))

	in.Solve()
	if in.Display(sub) != "Int" {
		t.Fatalf("Nat - Nat = %s, want Int", in.Display(sub))
	}
	if in.Display(x) != "Nat" || in.Display(sum) != "Nat" {
		t.Fatalf("defaulting gave x=%s sum=%s", in.Display(x), in.Display(sum))
	}
	if in.Display(cmp) != "Bool" {
		t.Fatalf("Char < Char = %s", in.Display(cmp))
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", f.codes())
	}
}

func TestBinaryWithoutRule(t *testing.T) {
	f := newFixture()
	in := f.session()
	out := in.Unknown(sp(1))
	in.MakeBinary(ast.BinAnd, in.Insert(sp(1), Prim(types.PrimNat)), in.Insert(sp(1), Prim(types.PrimNat)), out, sp(1))
	in.Solve()
	in.Reify(out)
	if got := f.codes(); len(got) != 1 || got[0] != diag.SemaNoBinaryOp {
		t.Fatalf("diagnostics = %v", got)
	}
}

func TestJoinRequiresSameLists(t *testing.T) {
	f := newFixture()
	in := f.session()
	a := in.Insert(sp(1), List(in.Insert(sp(1), Prim(types.PrimChar))))
	b := in.Unknown(sp(2))
	out := in.Unknown(sp(3))
	in.MakeBinary(ast.BinJoin, a, b, out, sp(3))
	in.Solve()
	if in.Display(b) != "[Char]" || in.Display(out) != "[Char]" {
		t.Fatalf("join gave b=%s out=%s", in.Display(b), in.Display(out))
	}
}

func TestCannotInferReportedOncePerRoot(t *testing.T) {
	f := newFixture()
	in := f.session()
	a := in.Insert(sp(1), UnknownFrom(sp(9)))
	b := in.Unknown(sp(2))
	in.MakeFlow(a, b, At(sp(1)))
	in.Solve()
	first := in.Reify(a)
	second := in.Reify(b)
	if first != second {
		t.Fatalf("linked vars reified to different ids %d, %d", first, second)
	}
	items := f.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaCannotInfer {
		t.Fatalf("diagnostics = %v", f.codes())
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span != sp(9) {
		t.Fatalf("origin note missing: %+v", items[0].Notes)
	}
	if got := f.store.Get(first); got.Kind != types.KindError {
		t.Fatalf("unknown reified to %+v", got)
	}
}

func classFixture(t *testing.T) (*fixture, types.ClassID) {
	t.Helper()
	f := newFixture()
	self := f.store.Insert(sp(0), types.MakeSelf())
	chars := f.store.Insert(sp(0), types.MakeList(f.store.Insert(sp(0), types.MakePrim(types.PrimChar))))
	show, err := f.table.AddClass(symbols.Class{Name: "Show", Fields: []symbols.ClassField{
		{Name: "show", Span: sp(50), Ty: f.store.Insert(sp(0), types.MakeFunc(self, chars))},
	}})
	if err != nil {
		t.Fatal(err)
	}
	f.table.AddMember(symbols.Member{Span: sp(60), Class: show, Self: f.store.Insert(sp(0), types.MakePrim(types.PrimNat))})

	// member A: Show for [A]
	scope := f.store.InsertGenScope(types.GenScope{Params: []types.GenParam{{
		Name: "A", Span: sp(70), Written: []types.WrittenObligation{{Class: "Show", Span: sp(71)}},
	}}})
	list := f.store.Insert(sp(0), types.MakeList(f.store.Insert(sp(0), types.MakeGen(scope, 0))))
	f.table.AddMember(symbols.Member{Span: sp(72), GenScope: scope, Class: show, Self: list})
	return f, show
}

func TestClassFieldSelectsMember(t *testing.T) {
	f, show := classFixture(t)
	in := f.session()
	self := in.Insert(sp(1), List(in.Insert(sp(1), Prim(types.PrimNat))))
	fieldTy := in.Unknown(sp(2))
	cv := in.MakeClassField(self, "show", sp(2), fieldTy, sp(2))
	in.Solve()
	if in.ClassOf(cv) != show {
		t.Fatalf("class = %d, want %d", in.ClassOf(cv), show)
	}
	if got := in.Display(fieldTy); got != "[Nat] -> [Char]" {
		t.Fatalf("field type = %s", got)
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", f.codes())
	}
}

func TestImplWithoutMember(t *testing.T) {
	f, show := classFixture(t)
	in := f.session()
	in.MakeImpl(in.Insert(sp(1), List(in.Insert(sp(1), Prim(types.PrimBool)))), show, sp(1), sp(40))
	in.Solve()
	items := f.bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaUnresolvedObligation {
		t.Fatalf("diagnostics = %v", f.codes())
	}
	// the nested obligation of the list member points at its declaration
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span != sp(71) {
		t.Fatalf("notes = %+v", items[0].Notes)
	}
}

func TestImplWaitsForType(t *testing.T) {
	f, show := classFixture(t)
	in := f.session()
	v := in.Unknown(sp(1))
	in.MakeImpl(v, show, sp(1), sp(40))
	in.Solve()
	if got := f.codes(); len(got) != 1 || got[0] != diag.SemaCannotInfer {
		t.Fatalf("diagnostics = %v", got)
	}
}

func TestEffectSendRecv(t *testing.T) {
	f := newFixture()
	scope := f.store.InsertGenScope(types.GenScope{Params: []types.GenParam{{Name: "A"}}})
	gen := f.store.Insert(sp(0), types.MakeGen(scope, 0))
	nat := f.store.Insert(sp(0), types.MakePrim(types.PrimNat))
	yield, _ := f.table.AddEffect(symbols.EffectDecl{Name: "Yield", GenScope: scope, Send: gen, Recv: nat})
	in := f.session()
	eff := in.UnknownEffect(sp(1))
	send := in.Unknown(sp(2))
	recv := in.Unknown(sp(3))
	in.MakeEffectSendRecv(eff, send, recv, sp(1))
	in.Solve()
	if got := f.codes(); len(got) != 1 || got[0] != diag.SemaCannotInfer {
		t.Fatalf("unknown effect should be left over, got %v", got)
	}

	f = newFixture()
	scope = f.store.InsertGenScope(types.GenScope{Params: []types.GenParam{{Name: "A"}}})
	gen = f.store.Insert(sp(0), types.MakeGen(scope, 0))
	nat = f.store.Insert(sp(0), types.MakePrim(types.PrimNat))
	yield, _ = f.table.AddEffect(symbols.EffectDecl{Name: "Yield", GenScope: scope, Send: gen, Recv: nat})
	in = f.session()
	eff = in.InsertEffect(sp(1), KnownEffect(yield, []TyVar{in.Insert(sp(1), Prim(types.PrimBool))}))
	send = in.Unknown(sp(2))
	recv = in.Unknown(sp(3))
	in.MakeEffectSendRecv(eff, send, recv, sp(1))
	in.Solve()
	if in.Display(send) != "Bool" || in.Display(recv) != "Nat" {
		t.Fatalf("send=%s recv=%s", in.Display(send), in.Display(recv))
	}
	obj := in.Insert(sp(4), EffectObj(eff, recv))
	if got := in.Display(obj); got != "Yield Bool ~ Nat" {
		t.Fatalf("effect object = %s", got)
	}
}

func TestReinstantiateSharesUnknowns(t *testing.T) {
	f := newFixture()
	in := f.session()
	hole := in.Unknown(sp(1))
	fn := in.Insert(sp(1), Func(in.Insert(sp(1), Prim(types.PrimNat)), hole))
	again := in.Reinstantiate(sp(2), fn)
	if again == fn {
		t.Fatalf("expected a distinct var")
	}
	in.MakeFlow(again, in.Insert(sp(3), Func(in.Insert(sp(3), Prim(types.PrimNat)), in.Insert(sp(3), Prim(types.PrimBool)))), At(sp(3)))
	in.Solve()
	if got := in.Display(fn); got != "Nat -> Bool" {
		t.Fatalf("original = %s", got)
	}
}
