package hir

import (
	"testing"

	"tao/internal/ast"
	"tao/internal/source"
)

func TestLookupIntrinsic(t *testing.T) {
	i, ok := LookupIntrinsic("skip_list")
	if !ok || i != IntrinsicSkipList || i.Arity() != 2 {
		t.Fatalf("skip_list = %v (%d), %v", i, i.Arity(), ok)
	}
	if _, ok := LookupIntrinsic("launch_missiles"); ok {
		t.Fatalf("unknown intrinsic resolved")
	}
	if got := IntrinsicSuspend.String(); got != "suspend" {
		t.Fatalf("String = %q", got)
	}
}

func TestWalkVisitsBindings(t *testing.T) {
	inner := Named(spanOf(3), 3, "x")
	arm := &Binding{Var: 2, Pat: Pat{Kind: PatTuple, Items: []*Binding{inner, Wildcard(spanOf(4), 4)}}}
	body := &Expr{Kind: ExprLocal, Var: 5, Data: LocalData{Name: "x"}}
	root := &Expr{Kind: ExprMatch, Var: 1, Data: MatchData{
		Scrutinee: &Expr{Kind: ExprLiteral, Var: 6, Data: LiteralData{Lit: ast.Literal{Kind: ast.LitNat, Nat: 1}}},
		Arms:      []Arm{{Binding: arm, Body: body}},
	}}
	var exprs, bindings int
	WalkAll(root, func(*Expr) { exprs++ }, func(*Binding) { bindings++ })
	if exprs != 3 || bindings != 3 {
		t.Fatalf("visited %d exprs and %d bindings", exprs, bindings)
	}
	if got := arm.Names(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("Names = %v", got)
	}
}

func spanOf(n uint32) source.Span { return source.Span{Start: n, End: n + 1} }
