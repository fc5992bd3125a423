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

// binding lowers a pattern with its optional name and type hint. The names it
// introduces are returned in source order.
func (s *session) binding(b *ast.Binding) (*hir.Binding, []Bound) {
	var bound []Bound
	out := s.bindingInto(b, &bound)
	return out, bound
}

func (s *session) bindingInto(b *ast.Binding, bound *[]Bound) *hir.Binding {
	if b == nil {
		sp := source.Span{File: s.l.file}
		return hir.Wildcard(sp, s.in.Unknown(sp))
	}
	sp := s.span(b.Span)
	out := &hir.Binding{Span: sp}
	var info infer.TyInfo
	out.Pat, info = s.pattern(b.Pat, bound)
	out.Var = s.in.Insert(sp, info)
	if b.Type != nil {
		s.in.MakeFlow(out.Var, s.ty(b.Type), infer.At(sp))
	}
	if b.Name != nil {
		out.Name = b.Name.Name
		*bound = append(*bound, Bound{Name: b.Name.Name, Var: out.Var})
	}
	return out
}

func (s *session) pattern(p *ast.Pat, bound *[]Bound) (hir.Pat, infer.TyInfo) {
	if p == nil {
		return hir.Pat{Kind: hir.PatWildcard}, infer.Unknown()
	}
	sp := s.span(p.Span)
	switch p.Kind {
	case ast.PatWildcard:
		return hir.Pat{Kind: hir.PatWildcard}, infer.Unknown()

	case ast.PatLiteral:
		if p.Lit == nil {
			s.malformed(sp, "literal pattern without a value")
			return hir.Pat{Kind: hir.PatError}, infer.Error(types.ReasonInvalid)
		}
		lit := s.literal(*p.Lit)
		info := infer.Ref(s.in.Insert(sp, s.literalInfo(lit, sp)))
		if lit.Kind != ast.LitStr {
			return hir.Pat{Kind: hir.PatLiteral, Lit: lit}, info
		}
		// a string pattern is the exact list of its characters
		ch := s.prim(sp, types.PrimChar)
		items := make([]*hir.Binding, 0, len(lit.Str))
		for _, c := range lit.Str {
			items = append(items, &hir.Binding{Span: sp, Var: ch,
				Pat: hir.Pat{Kind: hir.PatLiteral, Lit: ast.Literal{Kind: ast.LitChar, Char: c}}})
		}
		return hir.Pat{Kind: hir.PatListExact, Items: items}, info

	case ast.PatSingle:
		if p.Inner == nil {
			s.malformed(sp, "parenthesized pattern without an inner binding")
			return hir.Pat{Kind: hir.PatError}, infer.Error(types.ReasonInvalid)
		}
		inner := s.bindingInto(p.Inner, bound)
		return hir.Pat{Kind: hir.PatSingle, Inner: inner}, infer.Ref(inner.Var)

	case ast.PatAdd:
		if p.Inner == nil {
			s.malformed(sp, "arithmetic pattern without a binding")
			return hir.Pat{Kind: hir.PatError}, infer.Error(types.ReasonInvalid)
		}
		lhs := s.bindingInto(p.Inner, bound)
		if p.BinOp != ast.BinAdd || p.Lit == nil || p.Lit.Kind != ast.LitNat {
			rhs := "?"
			if p.Lit != nil {
				rhs = p.Lit.String()
			}
			s.report(diag.SemaPatternNotSupported, sp, "arithmetic pattern `_ %s %s` is not supported", p.BinOp, rhs).
				WithNote(sp, "only `binding + n` with a natural number n is supported").
				Emit()
			return hir.Pat{Kind: hir.PatError}, infer.Error(types.ReasonUnknown)
		}
		nat := s.prim(s.span(p.LitSpan), types.PrimNat)
		s.in.MakeFlow(lhs.Var, nat, infer.Because(sp, "only natural numbers support arithmetic patterns"))
		return hir.Pat{Kind: hir.PatAdd, Inner: lhs, N: p.Lit.Nat}, infer.Ref(nat)

	case ast.PatTuple:
		items := make([]*hir.Binding, len(p.Items))
		vars := make([]infer.TyVar, len(p.Items))
		for i, it := range p.Items {
			items[i] = s.bindingInto(it, bound)
			vars[i] = items[i].Var
		}
		return hir.Pat{Kind: hir.PatTuple, Items: items}, infer.Tuple(vars...)

	case ast.PatRecord:
		fields := make([]hir.PatField, 0, len(p.Fields))
		tys := make([]infer.Field, 0, len(p.Fields))
		seen := make(map[string]bool, len(p.Fields))
		for _, f := range p.Fields {
			if seen[f.Name.Name] {
				s.report(diag.SemaDuplicateField, s.span(f.Name.Span), "field `%s` appears twice in a record pattern", f.Name.Name).Emit()
				continue
			}
			seen[f.Name.Name] = true
			var fb *hir.Binding
			if f.Binding == nil {
				// `{x}` binds x
				fsp := s.span(f.Name.Span)
				fb = hir.Named(fsp, s.in.Unknown(fsp), f.Name.Name)
				*bound = append(*bound, Bound{Name: f.Name.Name, Var: fb.Var})
			} else {
				fb = s.bindingInto(f.Binding, bound)
			}
			fields = append(fields, hir.PatField{Name: f.Name.Name, Binding: fb})
			tys = append(tys, infer.Field{Name: f.Name.Name, Var: fb.Var})
		}
		return hir.Pat{Kind: hir.PatRecord, Fields: fields}, infer.Record(tys)

	case ast.PatListExact, ast.PatListFront:
		elem := s.in.Unknown(sp)
		items := make([]*hir.Binding, len(p.Items))
		for i, it := range p.Items {
			items[i] = s.bindingInto(it, bound)
			s.in.MakeFlow(items[i].Var, elem, infer.At(items[i].Span))
		}
		if p.Kind == ast.PatListExact {
			return hir.Pat{Kind: hir.PatListExact, Items: items}, infer.List(elem)
		}
		out := hir.Pat{Kind: hir.PatListFront, Items: items}
		if p.Inner != nil {
			tail := s.bindingInto(p.Inner, bound)
			s.in.MakeFlow(tail.Var, s.in.Insert(tail.Span, infer.List(elem)), infer.At(tail.Span))
			out.Tail = tail
		}
		return out, infer.List(elem)

	case ast.PatDeconstruct:
		return s.deconstruct(p, bound)
	}
	if p.Kind == ast.PatError {
		s.malformed(sp, "invalid pattern in the syntax tree")
	} else {
		s.malformed(sp, "unknown pattern kind %d", p.Kind)
	}
	return hir.Pat{Kind: hir.PatError}, infer.Error(types.ReasonUnknown)
}

func (s *session) deconstruct(p *ast.Pat, bound *[]Bound) (hir.Pat, infer.TyInfo) {
	sp := s.span(p.Span)
	data, ok := s.l.table.LookupCons(p.Name.Name)
	if !ok {
		s.report(diag.SemaNoSuchCons, s.span(p.Name.Span), "no such constructor `%s`", p.Name.Name).Emit()
		return hir.Pat{Kind: hir.PatError}, infer.Error(types.ReasonUnknown)
	}
	d := s.l.table.Data(data)
	gens := s.genArgs(d.GenScope, sp)
	s.enforceObligations(d.GenScope, d.Span, gens, sp)
	payload, _ := s.l.table.ConsPayload(data, p.Name.Name)
	innerSpan := sp
	if p.Inner != nil {
		innerSpan = s.span(p.Inner.Span)
	}
	actual := s.in.Instantiate(payload, innerSpan, substitute(d.GenScope, gens), 0)
	expected := s.in.Unknown(sp)
	s.in.MakeFlow(actual, expected, infer.At(sp))

	var inner *hir.Binding
	if p.Inner == nil {
		inner = hir.Wildcard(sp, s.in.Unknown(sp))
	} else {
		inner = s.bindingInto(p.Inner, bound)
	}
	s.in.MakeFlow(expected, inner.Var, infer.Because(sp, fmt.Sprintf("the payload of `%s`", p.Name.Name)))
	return hir.Pat{Kind: hir.PatDecons, Inner: inner, Data: data, Variant: p.Name.Name, GenVars: gens},
		infer.Data(data, gens)
}
