package hir

import (
	"tao/internal/infer"
	"tao/internal/types"
)

// Reify resolves every var under e through the solver session that produced
// it. It must run after the session's Solve.
func Reify(e *Expr, in *infer.Infer) {
	WalkAll(e, func(x *Expr) {
		x.Ty = in.Reify(x.Var)
		switch d := x.Data.(type) {
		case GlobalData:
			d.Gens = reifyVars(in, d.GenVars)
			x.Data = d
		case ConsData:
			d.Gens = reifyVars(in, d.GenVars)
			x.Data = d
		case ClassAccessData:
			d.Self = in.Reify(d.SelfVar)
			d.Class = in.ClassOf(d.ClassVar)
			x.Data = d
		case UnaryData:
			if d.EffVar != 0 {
				d.Eff = in.ReifyEffect(d.EffVar)
				x.Data = d
			}
		case BasinData:
			d.Eff = in.ReifyEffect(d.EffVar)
			x.Data = d
		case SuspendData:
			d.Eff = in.ReifyEffect(d.EffVar)
			x.Data = d
		case HandleData:
			d.Eff = in.ReifyEffect(d.EffVar)
			x.Data = d
		}
	}, func(b *Binding) {
		b.Ty = in.Reify(b.Var)
		if b.Pat.Kind == PatDecons {
			b.Pat.Gens = reifyVars(in, b.Pat.GenVars)
		}
	})
}

func reifyVars(in *infer.Infer, vs []infer.TyVar) []types.TyID {
	out := make([]types.TyID, len(vs))
	for i, v := range vs {
		out[i] = in.Reify(v)
	}
	return out
}
