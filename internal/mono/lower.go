package mono

import (
	"tao/internal/hir"
)

func (c *concretizer) expr(e *hir.Expr) *Expr {
	if e == nil {
		c.fail("missing expression")
	}
	out := &Expr{Span: e.Span, Ty: c.ty(e.Ty)}
	switch d := e.Data.(type) {
	case hir.LiteralData:
		out.Kind = ExprLiteral
		out.Lit = d.Lit
	case hir.LocalData:
		out.Kind = ExprLocal
		out.Name = d.Name
	case hir.GlobalData:
		args := c.tys(d.Gens)
		out.Kind = ExprGlobal
		out.Key = c.need(request{key: defKey(d.Def, args), def: d.Def, args: args})
	case hir.TupleData:
		out.Kind = ExprTuple
		out.Items = c.exprs(d.Items)
	case hir.ListData:
		out.Kind = ExprList
		out.Items = c.exprs(d.Items)
		out.Tails = c.exprs(d.Tails)
	case hir.RecordData:
		out.Kind = ExprRecord
		out.Fields = c.fields(d.Fields)
	case hir.AccessData:
		rec := c.expr(d.Record)
		_, _, ind, ok := c.followFieldAccess(rec.Ty, d.Field)
		if !ok {
			c.fail("no field %s on %s", d.Field, c.s.out.Types.Display(rec.Ty, c.s.out.Names))
		}
		out.Kind = ExprAccess
		out.Name = d.Field
		out.Indirections = ind
		out.Items = []*Expr{rec}
	case hir.UnaryData:
		out.Kind = ExprPropagate
		out.Eff = c.effect(d.Eff)
		out.Items = []*Expr{c.expr(d.Operand)}
	case hir.BinaryData:
		out.Kind = ExprBinary
		out.Op = d.Op
		out.Items = []*Expr{c.expr(d.Lhs), c.expr(d.Rhs)}
	case hir.MatchData:
		out.Kind = ExprMatch
		out.Hidden = d.Hidden
		out.Items = []*Expr{c.expr(d.Scrutinee)}
		out.Arms = make([]Arm, len(d.Arms))
		for i, a := range d.Arms {
			out.Arms[i] = Arm{Binding: c.binding(a.Binding), Body: c.expr(a.Body)}
		}
	case hir.FuncData:
		out.Kind = ExprFunc
		out.Name = d.Param
		out.Items = []*Expr{c.expr(d.Body)}
	case hir.ApplyData:
		out.Kind = ExprApply
		out.Items = []*Expr{c.expr(d.Func), c.expr(d.Arg)}
	case hir.ConsData:
		out.Kind = ExprCons
		out.Variant = d.Variant
		out.Items = []*Expr{c.expr(d.Inner)}
	case hir.ClassAccessData:
		self := c.ty(d.Self)
		id, _, args := c.selectMember(d.Class, self)
		out.Kind = ExprGlobal
		out.Key = c.need(request{key: memberKey(id, d.Field, args), member: id, field: d.Field, args: args})
	case hir.IntrinsicData:
		out.Kind = ExprIntrinsic
		out.Intrinsic = d.Intrinsic
		out.Items = c.exprs(d.Args)
	case hir.UpdateData:
		out.Kind = ExprUpdate
		out.Items = []*Expr{c.expr(d.Record)}
		out.Fields = c.fields(d.Fields)
	case hir.BasinData:
		out.Kind = ExprBasin
		out.Eff = c.effect(d.Eff)
		out.Items = []*Expr{c.expr(d.Body)}
	case hir.SuspendData:
		out.Kind = ExprSuspend
		out.Eff = c.effect(d.Eff)
		out.Items = []*Expr{c.expr(d.Inner)}
	case hir.HandleData:
		out.Kind = ExprHandle
		out.Eff = c.effect(d.Eff)
		out.Name = d.SendParam
		out.Items = []*Expr{c.expr(d.Expr), c.expr(d.Recv)}
	default:
		c.fail("%s expression survived checking", e.Kind)
	}
	return out
}

func (c *concretizer) exprs(es []*hir.Expr) []*Expr {
	if len(es) == 0 {
		return nil
	}
	out := make([]*Expr, len(es))
	for i, e := range es {
		out[i] = c.expr(e)
	}
	return out
}

func (c *concretizer) fields(fs []hir.FieldInit) []Field {
	out := make([]Field, len(fs))
	for i, f := range fs {
		out[i] = Field{Name: f.Name, Value: c.expr(f.Value)}
	}
	return out
}

func (c *concretizer) binding(b *hir.Binding) *Binding {
	if b == nil {
		return nil
	}
	out := &Binding{
		Span:    b.Span,
		Ty:      c.ty(b.Ty),
		Name:    b.Name,
		Kind:    b.Pat.Kind,
		Lit:     b.Pat.Lit,
		N:       b.Pat.N,
		Variant: b.Pat.Variant,
		Inner:   c.binding(b.Pat.Inner),
		Tail:    c.binding(b.Pat.Tail),
	}
	if b.Pat.Kind == hir.PatError {
		c.fail("error pattern survived checking")
	}
	if len(b.Pat.Items) > 0 {
		out.Items = make([]*Binding, len(b.Pat.Items))
		for i, x := range b.Pat.Items {
			out.Items[i] = c.binding(x)
		}
	}
	if len(b.Pat.Fields) > 0 {
		out.Fields = make([]PatField, len(b.Pat.Fields))
		for i, f := range b.Pat.Fields {
			out.Fields[i] = PatField{Name: f.Name, Binding: c.binding(f.Binding)}
		}
	}
	return out
}
