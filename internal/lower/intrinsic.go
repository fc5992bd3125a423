package lower

import (
	"fmt"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/infer"
	"tao/internal/source"
	"tao/internal/types"
)

// intrinsic lowers a call of a built-in operation. Each intrinsic fixes the
// types of its arguments and of its result.
func (s *session) intrinsic(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	nameSpan := s.span(e.Name.Span)
	args := make([]*hir.Expr, len(e.Items))
	for i, a := range e.Items {
		args[i] = s.expr(a, sc)
	}
	kind, ok := hir.LookupIntrinsic(e.Name.Name)
	if !ok || kind.Arity() != len(args) {
		b := s.report(diag.SemaInvalidIntrinsic, nameSpan, "invalid intrinsic `%s` with %d argument%s", e.Name.Name, len(args), plural(len(args)))
		if ok {
			b.WithNote(nameSpan, fmt.Sprintf("`%s` takes %d argument%s", kind, kind.Arity(), plural(kind.Arity())))
		}
		b.Emit()
		return s.errExpr(sp, types.ReasonInvalid)
	}
	why := infer.At(nameSpan)
	expect := func(a *hir.Expr, info infer.TyInfo) infer.TyVar {
		v := s.in.Insert(a.Span, info)
		s.in.MakeFlow(a.Var, v, why)
		return v
	}
	anyList := func(a *hir.Expr) infer.TyVar {
		return expect(a, infer.List(s.in.Unknown(a.Span)))
	}
	str := func(at source.Span) infer.TyInfo { return infer.List(s.prim(at, types.PrimChar)) }
	node := func(info infer.TyInfo) *hir.Expr {
		return s.node(hir.ExprIntrinsic, sp, s.in.Insert(sp, info), hir.IntrinsicData{Intrinsic: kind, Args: args})
	}

	switch kind {
	case hir.IntrinsicTypeName:
		// takes an empty list to carry the type
		anyList(args[0])
		return node(str(nameSpan))
	case hir.IntrinsicNegNat:
		expect(args[0], infer.Prim(types.PrimNat))
		return node(infer.Prim(types.PrimInt))
	case hir.IntrinsicNegInt:
		expect(args[0], infer.Prim(types.PrimInt))
		return node(infer.Prim(types.PrimInt))
	case hir.IntrinsicNegReal:
		expect(args[0], infer.Prim(types.PrimReal))
		return node(infer.Prim(types.PrimReal))
	case hir.IntrinsicEqChar, hir.IntrinsicEqNat:
		p := types.PrimNat
		if kind == hir.IntrinsicEqChar {
			p = types.PrimChar
		}
		v := s.prim(args[0].Span, p)
		s.in.MakeFlow(args[0].Var, v, why)
		s.in.MakeFlow(args[1].Var, v, why)
		return node(infer.Prim(types.PrimBool))
	case hir.IntrinsicGo:
		goData := s.l.table.Lang.Go
		if goData == 0 {
			s.report(diag.SemaInvalidIntrinsic, nameSpan, "intrinsic `go` needs a data type marked `$[lang(go)]`").Emit()
			return s.errExpr(sp, types.ReasonUnknown)
		}
		c := args[1].Var
		r := s.in.Unknown(sp)
		ret := s.in.Insert(args[0].Span, infer.Data(goData, []infer.TyVar{c, r}))
		expect(args[0], infer.Func(c, ret))
		return node(infer.Ref(r))
	case hir.IntrinsicPrint:
		expect(args[0], infer.Prim(types.PrimUniverse))
		expect(args[1], str(args[1].Span))
		return node(infer.Prim(types.PrimUniverse))
	case hir.IntrinsicInput:
		universe := expect(args[0], infer.Prim(types.PrimUniverse))
		return node(infer.Tuple(universe, s.in.Insert(sp, str(sp))))
	case hir.IntrinsicLenList:
		anyList(args[0])
		return node(infer.Prim(types.PrimNat))
	case hir.IntrinsicSkipList, hir.IntrinsicTrimList:
		list := anyList(args[0])
		expect(args[1], infer.Prim(types.PrimNat))
		return node(infer.Ref(list))
	case hir.IntrinsicSuspend:
		eff := s.basin(sc, nameSpan, "`suspend`")
		out := s.in.Unknown(sp)
		s.in.MakeEffectSendRecv(eff, args[0].Var, out, sp)
		return s.node(hir.ExprSuspend, sp, out, hir.SuspendData{EffVar: eff, Inner: args[0]})
	}
	return s.errExpr(sp, types.ReasonInvalid)
}
