package lower

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/infer"
	"tao/internal/source"
	"tao/internal/types"
)

const branchesMsg = "branches must produce compatible values"

// literal normalizes string literals to NFC so one visible character is one Char.
func (s *session) literal(lit ast.Literal) ast.Literal {
	if lit.Kind == ast.LitStr {
		lit.Str = norm.NFC.String(lit.Str)
	}
	return lit
}

func (s *session) literalInfo(lit ast.Literal, sp source.Span) infer.TyInfo {
	switch lit.Kind {
	case ast.LitNat:
		return infer.Prim(types.PrimNat)
	case ast.LitInt:
		return infer.Prim(types.PrimInt)
	case ast.LitReal:
		return infer.Prim(types.PrimReal)
	case ast.LitBool:
		return infer.Prim(types.PrimBool)
	case ast.LitChar:
		return infer.Prim(types.PrimChar)
	case ast.LitStr:
		return infer.List(s.prim(sp, types.PrimChar))
	}
	return infer.Error(types.ReasonInvalid)
}

func (s *session) unit(sp source.Span) *hir.Expr {
	return s.node(hir.ExprTuple, sp, s.in.Insert(sp, infer.Tuple()), hir.TupleData{})
}

// expr lowers e. It never fails: broken input yields an error node.
func (s *session) expr(e *ast.Expr, sc *Scope) *hir.Expr {
	if e == nil {
		sp := s.nowhere()
		s.malformed(sp, "missing expression")
		return s.errExpr(sp, types.ReasonInvalid)
	}
	sp := s.span(e.Span)
	switch e.Kind {
	case ast.ExprError:
		s.malformed(sp, "invalid expression in the syntax tree")
		return s.errExpr(sp, types.ReasonUnknown)

	case ast.ExprLiteral:
		if e.Lit == nil {
			s.malformed(sp, "literal without a value")
			return s.errExpr(sp, types.ReasonInvalid)
		}
		lit := s.literal(*e.Lit)
		return s.node(hir.ExprLiteral, sp, s.in.Insert(sp, s.literalInfo(lit, sp)), hir.LiteralData{Lit: lit})

	case ast.ExprLocal:
		return s.local(e, sc)

	case ast.ExprTuple:
		items := make([]*hir.Expr, len(e.Items))
		vars := make([]infer.TyVar, len(e.Items))
		for i, it := range e.Items {
			items[i] = s.expr(it, sc)
			vars[i] = items[i].Var
		}
		return s.node(hir.ExprTuple, sp, s.in.Insert(sp, infer.Tuple(vars...)), hir.TupleData{Items: items})

	case ast.ExprList:
		elem := s.in.Unknown(sp)
		list := s.in.Insert(sp, infer.List(elem))
		items := make([]*hir.Expr, len(e.Items))
		for i, it := range e.Items {
			items[i] = s.expr(it, sc)
			s.in.MakeFlow(items[i].Var, elem, infer.Because(items[i].Span, "list items must have compatible types"))
		}
		tails := make([]*hir.Expr, len(e.Tails))
		for i, t := range e.Tails {
			tails[i] = s.expr(t, sc)
			s.in.MakeFlow(tails[i].Var, list, infer.Because(tails[i].Span, "only lists can be spliced into a list"))
		}
		return s.node(hir.ExprList, sp, list, hir.ListData{Items: items, Tails: tails})

	case ast.ExprRecord:
		inits, fields := s.fieldInits(e.Fields, sc, "record")
		return s.node(hir.ExprRecord, sp, s.in.Insert(sp, infer.Record(fields)), hir.RecordData{Fields: inits})

	case ast.ExprAccess:
		rec := s.expr(e.Lhs, sc)
		out := s.in.Unknown(sp)
		fsp := s.span(e.Name.Span)
		s.in.MakeAccess(rec.Var, e.Name.Name, fsp, out)
		return s.node(hir.ExprAccess, sp, out, hir.AccessData{Record: rec, Field: e.Name.Name, FieldSpan: fsp})

	case ast.ExprUnary:
		return s.unary(e, sc)

	case ast.ExprBinary:
		return s.binary(e, sc)

	case ast.ExprLet:
		return s.let(e.Lets, e.Lhs, sc)

	case ast.ExprMatch:
		return s.match(e, sc)

	case ast.ExprIf:
		return s.ifExpr(e, sc)

	case ast.ExprFunc:
		return s.function(e, sc)

	case ast.ExprApply:
		f := s.expr(e.Lhs, sc)
		arg := s.expr(e.Rhs, sc)
		in := s.in.Unknown(arg.Span)
		out := s.in.Unknown(sp)
		s.in.MakeFlow(f.Var, s.in.Insert(f.Span, infer.Func(in, out)), infer.Because(sp, "only functions are callable"))
		s.in.MakeFlow(arg.Var, in, infer.Because(arg.Span, "functions may only be called with compatible arguments"))
		return s.node(hir.ExprApply, sp, out, hir.ApplyData{Func: f, Arg: arg})

	case ast.ExprCons:
		return s.cons(e, sc)

	case ast.ExprClassAccess:
		self := s.ty(e.Type)
		fsp := s.span(e.Name.Span)
		field := s.in.Unknown(fsp)
		cv := s.in.MakeClassField(self, e.Name.Name, fsp, field, sp)
		return s.node(hir.ExprClassAccess, sp, field,
			hir.ClassAccessData{SelfVar: self, ClassVar: cv, Field: e.Name.Name})

	case ast.ExprIntrinsic:
		return s.intrinsic(e, sc)

	case ast.ExprUpdate:
		rec := s.expr(e.Lhs, sc)
		inits, _ := s.fieldInits(e.Fields, sc, "update")
		for _, f := range inits {
			s.in.MakeUpdate(rec.Var, f.Name, f.Span, f.Value.Var)
		}
		return s.node(hir.ExprUpdate, sp, s.in.Insert(sp, infer.Ref(rec.Var)), hir.UpdateData{Record: rec, Fields: inits})

	case ast.ExprBlock:
		return s.block(e, sc)

	case ast.ExprHandle:
		return s.handle(e, sc)

	case ast.ExprLangDef:
		id, ok := s.l.table.Lang.LangDef(e.Name.Name)
		if !ok {
			s.report(diag.SemaMissingLangItem, sp, "no definition is marked `$[lang(%s)]`", e.Name.Name).Emit()
			return s.errExpr(sp, types.ReasonInvalid)
		}
		return s.instantiateDef(id, sp)
	}
	s.malformed(sp, "unknown expression kind %d", e.Kind)
	return s.errExpr(sp, types.ReasonInvalid)
}

func (s *session) fieldInits(fs []ast.FieldExpr, sc *Scope, what string) ([]hir.FieldInit, []infer.Field) {
	inits := make([]hir.FieldInit, 0, len(fs))
	fields := make([]infer.Field, 0, len(fs))
	seen := make(map[string]source.Span, len(fs))
	for _, f := range fs {
		fsp := s.span(f.Name.Span)
		value := s.expr(f.Value, sc)
		if prev, ok := seen[f.Name.Name]; ok {
			s.report(diag.SemaDuplicateField, fsp, "field `%s` appears twice in a %s", f.Name.Name, what).
				WithNote(prev, "first given here").
				Emit()
			continue
		}
		seen[f.Name.Name] = fsp
		inits = append(inits, hir.FieldInit{Name: f.Name.Name, Span: fsp, Value: value})
		fields = append(fields, infer.Field{Name: f.Name.Name, Var: value.Var})
	}
	return inits, fields
}

func (s *session) local(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	name := e.Name.Name
	if f, ok := sc.Find(name); ok {
		if !f.Recursive {
			return s.node(hir.ExprLocal, sp, s.in.Insert(sp, infer.Ref(f.Var)), hir.LocalData{Name: name})
		}
		v := s.in.Reinstantiate(sp, f.Var)
		return s.node(hir.ExprGlobal, sp, v, hir.GlobalData{Def: f.Def, GenVars: f.Gens})
	}
	if id, ok := s.l.table.LookupDef(name); ok {
		return s.instantiateDef(id, sp)
	}
	b := s.report(diag.SemaNoSuchLocal, sp, "no such item `%s`", name)
	if hint := closest(name, sc.Names()); hint != "" {
		b.WithNote(sp, fmt.Sprintf("a local called `%s` is in scope", hint))
	}
	b.Emit()
	return s.errExpr(sp, types.ReasonInvalid)
}

// closest returns a name differing from name only in case.
func closest(name string, names []string) string {
	for _, n := range names {
		if n != name && strings.EqualFold(n, name) {
			return n
		}
	}
	return ""
}

// instantiateDef refers to a global definition, giving each of its generic
// parameters a fresh var and posting their obligations at the use.
func (s *session) instantiateDef(id types.DefID, sp source.Span) *hir.Expr {
	d := s.l.table.Def(id)
	if d.Hint == types.NoTyID {
		s.l.ensureDef(id)
	}
	ty := d.Hint
	if ty == types.NoTyID {
		ty = d.BodyTy
	}
	if ty == types.NoTyID {
		s.report(diag.SemaDefTypeNotSpecified, sp, "the type of `%s` must be known before it is used here", d.Name).
			WithNote(d.Span, "add a type hint to this definition").
			Emit()
		return s.errExpr(sp, types.ReasonUnknown)
	}
	gens := s.genArgs(d.GenScope, sp)
	s.enforceObligations(d.GenScope, d.Span, gens, sp)
	actual := s.in.Instantiate(ty, sp, substitute(d.GenScope, gens), 0)
	v := s.in.Unknown(sp)
	s.in.MakeFlow(actual, v, infer.At(sp))
	return s.node(hir.ExprGlobal, sp, v, hir.GlobalData{Def: id, GenVars: gens})
}

// basin returns the effect collected by the nearest block. Outside any block
// the problem is reported at opSpan and a placeholder effect is used.
func (s *session) basin(sc *Scope, opSpan source.Span, what string) infer.EffectVar {
	if eff, ok := sc.LastBasin(); ok {
		return eff
	}
	s.report(diag.SemaNoBasin, opSpan, "%s is only valid inside a block", what).Emit()
	return s.in.UnknownEffect(opSpan)
}

func (s *session) unary(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	opSpan := s.span(e.UnOpSpan)
	a := s.expr(e.Lhs, sc)
	out := s.in.Unknown(sp)
	switch e.UnOp {
	case ast.UnaryPropagate:
		eff := s.basin(sc, opSpan, "`?`")
		obj := s.in.Insert(a.Span, infer.EffectObj(eff, out))
		s.in.MakeFlow(a.Var, obj, infer.At(opSpan))
		return s.node(hir.ExprUnary, sp, out, hir.UnaryData{Op: e.UnOp, Operand: a, EffVar: eff})
	case ast.UnaryNot:
		return s.classOp(s.l.table.Lang.Not, "not", sp, opSpan, out, a)
	default:
		return s.classOp(s.l.table.Lang.Neg, "neg", sp, opSpan, out, a)
	}
}

// classOp desugars an operator into a call of a class member: `op a b` becomes
// `Class::field a b`, with the class field's Self taken from the first operand.
func (s *session) classOp(class types.ClassID, field string, sp, opSpan source.Span, out infer.TyVar, args ...*hir.Expr) *hir.Expr {
	// fns[i] is the type left after applying i arguments
	fns := make([]infer.TyVar, len(args)+1)
	fns[len(args)] = out
	for i := len(args) - 1; i >= 0; i-- {
		fns[i] = s.in.Insert(opSpan, infer.Func(args[i].Var, fns[i+1]))
	}
	self := args[0].Var
	cv := s.in.MakeClassFieldKnown(self, field, opSpan, class, fns[0], sp)
	f := s.node(hir.ExprClassAccess, opSpan, fns[0], hir.ClassAccessData{SelfVar: self, ClassVar: cv, Field: field})
	for i, a := range args {
		f = s.node(hir.ExprApply, sp, fns[i+1], hir.ApplyData{Func: f, Arg: a})
	}
	return f
}

func (s *session) binary(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	a := s.expr(e.Lhs, sc)
	b := s.expr(e.Rhs, sc)
	out := s.in.Unknown(sp)
	if e.BinOp == ast.BinEq && s.l.table.Lang.Eq != 0 {
		s.in.MakeFlow(a.Var, b.Var, infer.At(sp))
		s.in.MakeFlow(b.Var, a.Var, infer.At(sp))
		return s.classOp(s.l.table.Lang.Eq, "eq", sp, sp, out, a, b)
	}
	s.in.MakeBinary(e.BinOp, a.Var, b.Var, out, sp)
	return s.node(hir.ExprBinary, sp, out, hir.BinaryData{Op: e.BinOp, Lhs: a, Rhs: b})
}

// let chains bindings as single-arm matches, each visible to the next.
func (s *session) let(lets []ast.LetBinding, body *ast.Expr, sc *Scope) *hir.Expr {
	if len(lets) == 0 {
		return s.expr(body, sc)
	}
	lb := lets[0]
	val := s.expr(lb.Value, sc)
	bind, bound := s.binding(lb.Binding)
	s.in.MakeFlow(val.Var, bind.Var, infer.At(val.Span))
	then := s.let(lets[1:], body, sc.WithMany(bound))
	return s.node(hir.ExprMatch, bind.Span, then.Var, hir.MatchData{
		Hidden:    true,
		Scrutinee: val,
		Arms:      []hir.Arm{{Binding: bind, Body: then}},
	})
}

// tupleBinding lowers the parameters of one arm, wrapping several in a tuple.
func (s *session) tupleBinding(params []*ast.Binding, sp source.Span) (*hir.Binding, []Bound) {
	if len(params) == 1 {
		return s.binding(params[0])
	}
	var bound []Bound
	items := make([]*hir.Binding, len(params))
	vars := make([]infer.TyVar, len(params))
	for i, p := range params {
		items[i] = s.bindingInto(p, &bound)
		vars[i] = items[i].Var
	}
	b := &hir.Binding{Span: sp, Var: s.in.Insert(sp, infer.Tuple(vars...)), Pat: hir.Pat{Kind: hir.PatTuple, Items: items}}
	return b, bound
}

func (s *session) arms(arms []ast.Arm, pred *hir.Expr, out infer.TyVar, sp source.Span, sc *Scope) []hir.Arm {
	res := make([]hir.Arm, len(arms))
	for i, arm := range arms {
		bind, bound := s.tupleBinding(arm.Params, s.span(arm.Span))
		s.in.MakeFlow(pred.Var, bind.Var, infer.At(bind.Span))
		body := s.expr(arm.Body, sc.WithMany(bound))
		s.in.MakeFlow(body.Var, out, infer.Because(sp, branchesMsg))
		res[i] = hir.Arm{Binding: bind, Body: body}
	}
	return res
}

func (s *session) wrongParams(arm ast.Arm, want int, against source.Span, what string) {
	s.report(diag.SemaWrongNumberOfParams, s.span(arm.Span), "this arm has %d parameter%s but %d %s expected",
		len(arm.Params), plural(len(arm.Params)), want, what).
		WithNote(against, "compare with this").
		Emit()
}

func (s *session) match(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	predSpan := s.span(e.ItemsSpan)
	bad := false
	for _, arm := range e.Arms {
		if len(arm.Params) != len(e.Items) {
			s.wrongParams(arm, len(e.Items), predSpan, "scrutinees were")
			bad = true
		}
	}
	if bad {
		return s.errExpr(sp, types.ReasonUnknown)
	}
	var pred *hir.Expr
	if len(e.Items) == 1 {
		pred = s.expr(e.Items[0], sc)
	} else {
		pred = s.expr(&ast.Expr{Kind: ast.ExprTuple, Span: e.ItemsSpan, Items: e.Items}, sc)
	}
	out := s.in.Unknown(sp)
	arms := s.arms(e.Arms, pred, out, sp, sc)
	return s.node(hir.ExprMatch, sp, out, hir.MatchData{Scrutinee: pred, Arms: arms})
}

func (s *session) ifExpr(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	pred := s.expr(e.Lhs, sc)
	s.in.MakeFlow(pred.Var, s.prim(pred.Span, types.PrimBool), infer.Because(sp, "conditions must be booleans"))
	out := s.in.Unknown(sp)
	then := s.expr(e.Rhs, sc)
	var els *hir.Expr
	if e.Else != nil {
		els = s.expr(e.Else, sc)
	} else {
		els = s.unit(sp)
	}
	s.in.MakeFlow(then.Var, out, infer.Because(sp, branchesMsg))
	s.in.MakeFlow(els.Var, out, infer.Because(sp, branchesMsg))
	arm := func(b bool, body *hir.Expr) hir.Arm {
		return hir.Arm{
			Binding: &hir.Binding{Span: pred.Span, Var: pred.Var, Pat: hir.Pat{Kind: hir.PatLiteral, Lit: ast.Literal{Kind: ast.LitBool, Bool: b}}},
			Body:    body,
		}
	}
	return s.node(hir.ExprMatch, sp, out, hir.MatchData{
		Hidden:    true,
		Scrutinee: pred,
		Arms:      []hir.Arm{arm(true, then), arm(false, els)},
	})
}

// function lowers a multi-arm function literal into curried single-parameter
// functions whose innermost body matches the parameters against every arm.
func (s *session) function(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	if len(e.Arms) == 0 {
		s.report(diag.SemaNoBranches, sp, "a function needs at least one branch").Emit()
		return s.errExpr(sp, types.ReasonUnknown)
	}
	first := e.Arms[0]
	n := len(first.Params)
	bad := false
	for _, arm := range e.Arms[1:] {
		if len(arm.Params) != n {
			s.wrongParams(arm, n, s.span(first.Span), "the first branch has")
			bad = true
		}
	}
	if bad {
		return s.errExpr(sp, types.ReasonUnknown)
	}
	if n == 0 {
		s.report(diag.SemaWrongNumberOfParams, sp, "a function needs at least one parameter").Emit()
		return s.errExpr(sp, types.ReasonUnknown)
	}
	outSpan := sp
	if len(e.Arms) == 1 && first.Body != nil {
		outSpan = s.span(first.Body.Span)
	}
	out := s.in.Unknown(outSpan)

	names := make([]string, n)
	vars := make([]infer.TyVar, n)
	locals := make([]*hir.Expr, n)
	for i := range names {
		names[i] = s.freshName("arg")
		vars[i] = s.in.Unknown(s.span(first.Params[i].Span))
		locals[i] = s.node(hir.ExprLocal, sp, s.in.Insert(sp, infer.Ref(vars[i])), hir.LocalData{Name: names[i]})
	}
	pred := locals[0]
	if n > 1 {
		pred = s.node(hir.ExprTuple, sp, s.in.Insert(sp, infer.Tuple(vars...)), hir.TupleData{Items: locals})
	}
	arms := s.arms(e.Arms, pred, out, sp, sc)
	body := s.node(hir.ExprMatch, sp, out, hir.MatchData{Scrutinee: pred, Arms: arms})
	for i := n - 1; i >= 0; i-- {
		body = s.node(hir.ExprFunc, sp, s.in.Insert(sp, infer.Func(vars[i], body.Var)), hir.FuncData{Param: names[i], Body: body})
	}
	return body
}

func (s *session) cons(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	nameSpan := s.span(e.Name.Span)
	data, ok := s.l.table.LookupCons(e.Name.Name)
	if !ok {
		if e.Lhs != nil {
			s.expr(e.Lhs, sc)
		}
		s.report(diag.SemaNoSuchCons, nameSpan, "no such constructor `%s`", e.Name.Name).Emit()
		return s.errExpr(sp, types.ReasonUnknown)
	}
	d := s.l.table.Data(data)
	gens := s.genArgs(d.GenScope, sp)
	s.enforceObligations(d.GenScope, d.Span, gens, sp)
	payload, _ := s.l.table.ConsPayload(data, e.Name.Name)
	actual := s.in.Instantiate(payload, nameSpan, substitute(d.GenScope, gens), 0)
	expected := s.in.Unknown(sp)
	s.in.MakeFlow(expected, actual, infer.At(sp))

	var inner *hir.Expr
	if e.Lhs == nil {
		inner = s.unit(nameSpan)
	} else {
		inner = s.expr(e.Lhs, sc)
	}
	s.in.MakeFlow(inner.Var, expected, infer.Because(sp, fmt.Sprintf("the payload of `%s`", e.Name.Name)))
	return s.node(hir.ExprCons, sp, s.in.Insert(sp, infer.Data(data, gens)),
		hir.ConsData{Data: data, Variant: e.Name.Name, GenVars: gens, Inner: inner})
}

// block opens a basin: statements run in order and the block is an effect
// object of everything they raise.
func (s *session) block(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	eff := s.in.UnknownEffect(sp)
	inner := sc.WithBasin(eff)
	if len(e.Items) == 0 {
		last := s.unit(sp)
		return s.node(hir.ExprBasin, sp, s.in.Insert(sp, infer.EffectObj(eff, last.Var)), hir.BasinData{EffVar: eff, Body: last})
	}
	stmts := make([]*hir.Expr, len(e.Items))
	for i, st := range e.Items {
		stmts[i] = s.expr(st, inner)
	}
	chain := stmts[len(stmts)-1]
	for i := len(stmts) - 2; i >= 0; i-- {
		before := stmts[i]
		chain = s.node(hir.ExprMatch, chain.Span, chain.Var, hir.MatchData{
			Hidden:    true,
			Scrutinee: before,
			Arms:      []hir.Arm{{Binding: hir.Wildcard(before.Span, before.Var), Body: chain}},
		})
	}
	return s.node(hir.ExprBasin, sp, s.in.Insert(sp, infer.EffectObj(eff, chain.Var)), hir.BasinData{EffVar: eff, Body: chain})
}

func (s *session) handle(e *ast.Expr, sc *Scope) *hir.Expr {
	sp := s.span(e.Span)
	nameSpan := s.span(e.Name.Span)
	expr := s.expr(e.Lhs, sc)
	var send *hir.Binding
	var bound []Bound
	if e.Send != nil {
		send, bound = s.binding(e.Send)
	} else {
		send = hir.Wildcard(sp, s.in.Unknown(sp))
	}
	recv := s.expr(e.Rhs, sc.WithMany(bound))
	args := s.tys(e.Generics)

	id, ok := s.l.table.LookupEffect(e.Name.Name)
	if !ok {
		s.report(diag.SemaNoSuchEffect, nameSpan, "no such effect `%s`", e.Name.Name).Emit()
		return s.errExpr(sp, types.ReasonInvalid)
	}
	decl := s.l.table.Effect(id)
	if !s.enforceObligations(decl.GenScope, decl.Span, args, sp) {
		return s.errExpr(sp, types.ReasonUnknown)
	}
	out := s.in.Unknown(sp)
	eff := s.in.InsertEffect(sp, infer.KnownEffect(id, args))
	s.in.MakeEffectSendRecv(eff, send.Var, recv.Var, nameSpan)
	s.in.MakeFlow(expr.Var, s.in.Insert(expr.Span, infer.EffectObj(eff, out)), infer.At(sp))

	param := s.freshName("send")
	local := s.node(hir.ExprLocal, send.Span, s.in.Insert(send.Span, infer.Ref(send.Var)), hir.LocalData{Name: param})
	answer := s.node(hir.ExprMatch, recv.Span, recv.Var, hir.MatchData{
		Hidden:    true,
		Scrutinee: local,
		Arms:      []hir.Arm{{Binding: send, Body: recv}},
	})
	return s.node(hir.ExprHandle, sp, out, hir.HandleData{Expr: expr, EffVar: eff, SendParam: param, Recv: answer})
}
