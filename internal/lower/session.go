package lower

import (
	"fmt"
	"strings"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/infer"
	"tao/internal/source"
	"tao/internal/symbols"
	"tao/internal/types"
)

// session lowers syntax checked by one solver session.
type session struct {
	l      *Lowerer
	in     *infer.Infer
	selfOK bool
	pseudo int
}

func (s *session) span(sp ast.Span) source.Span { return s.l.span(sp) }

func (s *session) report(code diag.Code, sp source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(s.l.rep, code, sp, fmt.Sprintf(format, args...))
}

func (s *session) prim(sp source.Span, p types.Prim) infer.TyVar {
	return s.in.Insert(sp, infer.Prim(p))
}

func (s *session) errTy(sp source.Span, r types.ErrorReason) infer.TyVar {
	return s.in.Insert(sp, infer.Error(r))
}

func (s *session) node(kind hir.ExprKind, sp source.Span, v infer.TyVar, data hir.ExprData) *hir.Expr {
	return &hir.Expr{Kind: kind, Span: sp, Var: v, Data: data}
}

func (s *session) errExpr(sp source.Span, r types.ErrorReason) *hir.Expr {
	return s.node(hir.ExprError, sp, s.errTy(sp, r), nil)
}

// malformed reports a node the tree producer left broken. Error nodes are
// only ever built after a diagnostic, so the driver stops before mono.
func (s *session) malformed(sp source.Span, format string, args ...any) {
	s.report(diag.SemaMalformedTree, sp, format, args...).Emit()
}

// nowhere locates a missing node; the tree has no span for it.
func (s *session) nowhere() source.Span { return s.l.prog.Root }

// freshName returns a name no source program can spell.
func (s *session) freshName(base string) string {
	s.pseudo++
	return fmt.Sprintf("$%s%d", base, s.pseudo)
}

// genArgs allocates one fresh var per parameter of scope, remembering where
// each parameter was declared.
func (s *session) genArgs(scope types.GenScopeID, sp source.Span) []infer.TyVar {
	g := s.l.store.GenScope(scope)
	out := make([]infer.TyVar, g.Len())
	for i := range out {
		out[i] = s.in.Insert(sp, infer.UnknownFrom(g.Params[i].Span))
	}
	return out
}

func substitute(scope types.GenScopeID, args []infer.TyVar) func(types.GenScopeID, int) (infer.TyVar, bool) {
	return func(sc types.GenScopeID, idx int) (infer.TyVar, bool) {
		if sc == scope && idx < len(args) {
			return args[idx], true
		}
		return 0, false
	}
}

// enforceObligations checks the argument count for scope and posts one Impl
// per obligation. itemSpan locates the item when it has no generics at all.
func (s *session) enforceObligations(scope types.GenScopeID, itemSpan source.Span, args []infer.TyVar, use source.Span) bool {
	g := s.l.store.GenScope(scope)
	if len(args) != g.Len() {
		decl := g.Span
		if g.Len() == 0 {
			decl = itemSpan
		}
		s.report(diag.SemaWrongNumberOfGenerics, use, "expected %d generic argument%s, found %d",
			g.Len(), plural(g.Len()), len(args)).
			WithNote(decl, "generics declared here").
			Emit()
		return false
	}
	for i := range g.Params {
		for _, o := range g.Params[i].Obligations() {
			s.in.MakeImpl(args[i], o.Class, use, o.Span)
		}
	}
	return true
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var primNames = map[string]types.Prim{
	"Nat":  types.PrimNat,
	"Int":  types.PrimInt,
	"Real": types.PrimReal,
	"Bool": types.PrimBool,
	"Char": types.PrimChar,
}

// ty lowers a type annotation.
func (s *session) ty(t *ast.Type) infer.TyVar {
	if t == nil {
		return s.in.Unknown(source.Span{File: s.l.file})
	}
	sp := s.span(t.Span)
	switch t.Kind {
	case ast.TypeError:
		s.malformed(sp, "invalid type in the syntax tree")
		return s.errTy(sp, types.ReasonUnknown)
	case ast.TypeUnknown:
		return s.in.Unknown(sp)
	case ast.TypeUniverse:
		return s.prim(sp, types.PrimUniverse)
	case ast.TypeList:
		return s.in.Insert(sp, infer.List(s.ty(t.Elem)))
	case ast.TypeTuple:
		items := make([]infer.TyVar, len(t.Items))
		for i, it := range t.Items {
			items[i] = s.ty(it)
		}
		return s.in.Insert(sp, infer.Tuple(items...))
	case ast.TypeRecord:
		fields := make([]infer.Field, 0, len(t.Fields))
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if seen[f.Name.Name] {
				s.report(diag.SemaDuplicateField, s.span(f.Name.Span), "field `%s` appears twice in a record type", f.Name.Name).Emit()
				continue
			}
			seen[f.Name.Name] = true
			fields = append(fields, infer.Field{Name: f.Name.Name, Var: s.ty(f.Type)})
		}
		return s.in.Insert(sp, infer.Record(fields))
	case ast.TypeFunc:
		return s.in.Insert(sp, infer.Func(s.ty(t.Elem), s.ty(t.Out)))
	case ast.TypeData:
		return s.namedTy(t, sp)
	case ast.TypeAssoc:
		base := s.ty(t.Elem)
		out := s.in.Unknown(sp)
		s.in.MakeClassAssoc(base, t.Name.Name, out, sp)
		return out
	case ast.TypeEffect:
		return s.effectTy(t, sp)
	}
	s.malformed(sp, "unknown type kind %d", t.Kind)
	return s.errTy(sp, types.ReasonInvalid)
}

func (s *session) tys(ts []*ast.Type) []infer.TyVar {
	out := make([]infer.TyVar, len(ts))
	for i, t := range ts {
		out[i] = s.ty(t)
	}
	return out
}

func (s *session) noArgs(t *ast.Type, sp source.Span, what string) bool {
	if len(t.Items) == 0 {
		return true
	}
	s.report(diag.SemaWrongNumberOfGenerics, sp, "%s `%s` takes no generic arguments, found %d", what, t.Name.Name, len(t.Items)).Emit()
	return false
}

// namedTy resolves a name used as a type: Self, primitives, generics of the
// current scope, aliases and data types, in that order.
func (s *session) namedTy(t *ast.Type, sp source.Span) infer.TyVar {
	name := t.Name.Name
	if name == "Self" && len(t.Items) == 0 {
		if self, ok := s.in.SelfType(); ok {
			return s.in.Insert(sp, infer.Ref(self))
		}
		if s.selfOK {
			return s.in.Insert(sp, infer.Self())
		}
		s.report(diag.SemaSelfNotValidHere, sp, "`Self` is only valid inside classes and members").Emit()
		return s.errTy(sp, types.ReasonInvalid)
	}
	if p, ok := primNames[name]; ok {
		if !s.noArgs(t, sp, "primitive type") {
			return s.errTy(sp, types.ReasonUnknown)
		}
		return s.prim(sp, p)
	}
	if scope := s.in.GenScope(); scope != types.NoGenScope {
		if idx, ok := s.l.store.GenScope(scope).Find(name); ok {
			if !s.noArgs(t, sp, "generic type") {
				return s.errTy(sp, types.ReasonUnknown)
			}
			return s.in.Insert(sp, infer.Gen(scope, idx))
		}
	}
	if id, ok := s.l.table.LookupAlias(name); ok {
		return s.aliasTy(id, t, sp)
	}
	if id, ok := s.l.table.LookupData(name); ok {
		d := s.l.table.Data(id)
		args := s.tys(t.Items)
		if !s.enforceObligations(d.GenScope, d.Span, args, sp) {
			return s.errTy(sp, types.ReasonUnknown)
		}
		return s.in.Insert(sp, infer.Data(id, args))
	}
	b := s.report(diag.SemaNoSuchData, sp, "no such type `%s`", name)
	if hint := s.similarType(name); hint != "" {
		b.WithNote(sp, fmt.Sprintf("a type called `%s` exists", hint))
	}
	b.Emit()
	return s.errTy(sp, types.ReasonInvalid)
}

// similarType finds a declared type differing from name only in case.
func (s *session) similarType(name string) string {
	for i := uint32(1); i <= s.l.table.Datas.Len(); i++ {
		if d := s.l.table.Datas.Get(i); strings.EqualFold(d.Name, name) {
			return d.Name
		}
	}
	for p := range primNames {
		if strings.EqualFold(p, name) {
			return p
		}
	}
	return ""
}

func (s *session) aliasTy(id types.AliasID, t *ast.Type, sp source.Span) infer.TyVar {
	s.l.ensureAlias(id)
	a := s.l.table.Alias(id)
	args := s.tys(t.Items)
	if a.State != symbols.AliasDone {
		s.report(diag.SemaRecursiveAlias, sp, "type alias `%s` refers to itself", a.Name).
			WithNote(a.Span, "alias declared here").
			Emit()
		return s.errTy(sp, types.ReasonRecursive)
	}
	g := s.l.store.GenScope(a.GenScope)
	if len(args) != g.Len() {
		decl := g.Span
		if g.Len() == 0 {
			decl = a.Span
		}
		s.report(diag.SemaWrongNumberOfGenerics, sp, "expected %d generic argument%s, found %d", g.Len(), plural(g.Len()), len(args)).
			WithNote(decl, "alias generics declared here").
			Emit()
		return s.errTy(sp, types.ReasonUnknown)
	}
	out := s.in.Unknown(sp)
	s.in.MakeFlow(s.in.Instantiate(a.Ty, sp, substitute(a.GenScope, args), 0), out, infer.At(sp))
	return out
}

func (s *session) effectTy(t *ast.Type, sp source.Span) infer.TyVar {
	id, ok := s.l.table.LookupEffect(t.Name.Name)
	if !ok {
		s.report(diag.SemaNoSuchEffect, s.span(t.Name.Span), "no such effect `%s`", t.Name.Name).Emit()
		return s.errTy(sp, types.ReasonInvalid)
	}
	e := s.l.table.Effect(id)
	args := s.tys(t.Items)
	out := s.ty(t.Out)
	if !s.enforceObligations(e.GenScope, e.Span, args, sp) {
		return s.errTy(sp, types.ReasonUnknown)
	}
	eff := s.in.InsertEffect(sp, infer.KnownEffect(id, args))
	return s.in.Insert(sp, infer.EffectObj(eff, out))
}
