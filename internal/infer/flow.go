package infer

import (
	"fmt"

	"tao/internal/diag"
	"tao/internal/types"
)

// MakeFlow requires values of type produced to be usable where expected is
// required. Types are invariant, so this is solved as an equality right away.
func (in *Infer) MakeFlow(produced, expected TyVar, why EqInfo) {
	in.flow(produced, expected, why)
}

func (in *Infer) flow(a, b TyVar, why EqInfo) {
	a, b = in.follow(a), in.follow(b)
	if a == b {
		return
	}
	ia, ib := in.vars[a].info, in.vars[b].info
	switch {
	case ia.Kind == InfoUnknown:
		in.link(a, b, why)
		return
	case ib.Kind == InfoUnknown:
		in.link(b, a, why)
		return
	case ia.Kind == InfoError || ib.Kind == InfoError:
		return
	}
	if ia.Kind != ib.Kind {
		in.mismatch(a, b, why)
		return
	}
	switch ia.Kind {
	case InfoPrim:
		if ia.Prim != ib.Prim {
			in.mismatch(a, b, why)
		}
	case InfoList:
		in.flow(ia.Elem, ib.Elem, why)
	case InfoTuple:
		if len(ia.Items) != len(ib.Items) {
			in.mismatch(a, b, why)
			return
		}
		for i := range ia.Items {
			in.flow(ia.Items[i], ib.Items[i], why)
		}
	case InfoRecord:
		if !sameFieldNames(ia.Fields, ib.Fields) {
			in.mismatch(a, b, why)
			return
		}
		for i := range ia.Fields {
			in.flow(ia.Fields[i].Var, ib.Fields[i].Var, why)
		}
	case InfoFunc:
		in.flow(ib.In, ia.In, why)
		in.flow(ia.Out, ib.Out, why)
	case InfoData:
		if ia.Data != ib.Data || len(ia.Items) != len(ib.Items) {
			in.mismatch(a, b, why)
			return
		}
		for i := range ia.Items {
			in.flow(ia.Items[i], ib.Items[i], why)
		}
	case InfoGen:
		// scopes differ between a def's signature and its body; the index decides
		if ia.Index != ib.Index {
			in.mismatch(a, b, why)
		}
	case InfoSelf:
	case InfoAssoc:
		if ia.Class != ib.Class || ia.Name != ib.Name {
			in.mismatch(a, b, why)
			return
		}
		in.flow(ia.Elem, ib.Elem, why)
	case InfoEffect:
		in.flowEffect(ia.Effect, ib.Effect, why)
		in.flow(ia.Elem, ib.Elem, why)
	}
}

func sameFieldNames(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

// link points the unknown u at v unless v mentions u.
func (in *Infer) link(u, v TyVar, why EqInfo) {
	if in.occurs(u, v, 0) {
		in.set(u, Error(types.ReasonRecursive))
		diag.ReportError(in.env.Reporter, diag.SemaRecursiveType, why.Span,
			fmt.Sprintf("recursive type: `%s` would have to contain itself", in.Display(v))).
			WithNote(in.vars[u].span, "this type occurs inside itself").
			Emit()
		return
	}
	uinfo := in.vars[u].info
	if vi := &in.vars[in.follow(v)].info; vi.Kind == InfoUnknown && !vi.HasOrigin && uinfo.HasOrigin {
		vi.Origin, vi.HasOrigin = uinfo.Origin, true
	}
	in.set(u, Ref(v))
}

func (in *Infer) occurs(u, v TyVar, depth int) bool {
	v = in.follow(v)
	if u == v {
		return true
	}
	if depth > 256 {
		return true
	}
	info := in.vars[v].info
	switch info.Kind {
	case InfoList, InfoAssoc:
		return in.occurs(u, info.Elem, depth+1)
	case InfoEffect:
		if in.occurs(u, info.Elem, depth+1) {
			return true
		}
		e := in.effects[in.followEffect(info.Effect)].info
		for _, a := range e.Args {
			if in.occurs(u, a, depth+1) {
				return true
			}
		}
	case InfoTuple, InfoData:
		for _, it := range info.Items {
			if in.occurs(u, it, depth+1) {
				return true
			}
		}
	case InfoRecord:
		for _, f := range info.Fields {
			if in.occurs(u, f.Var, depth+1) {
				return true
			}
		}
	case InfoFunc:
		return in.occurs(u, info.In, depth+1) || in.occurs(u, info.Out, depth+1)
	}
	return false
}

func (in *Infer) mismatch(a, b TyVar, why EqInfo) {
	msg := fmt.Sprintf("type mismatch between `%s` and `%s`", in.Display(a), in.Display(b))
	if why.Msg != "" {
		msg = why.Msg + ": " + msg
	}
	diag.ReportError(in.env.Reporter, diag.SemaTypeMismatch, why.Span, msg).
		WithNote(in.vars[a].span, fmt.Sprintf("`%s` is produced here", in.Display(a))).
		WithNote(in.vars[b].span, fmt.Sprintf("`%s` is expected here", in.Display(b))).
		Emit()
}

func (in *Infer) flowEffect(a, b EffectVar, why EqInfo) {
	a, b = in.followEffect(a), in.followEffect(b)
	if a == b {
		return
	}
	ia, ib := in.effects[a].info, in.effects[b].info
	switch {
	case ia.Kind == EffUnknown:
		in.effects[a].info = EffectInfo{Kind: EffRef, Ref: b}
	case ib.Kind == EffUnknown:
		in.effects[b].info = EffectInfo{Kind: EffRef, Ref: a}
	case ia.Kind == EffError || ib.Kind == EffError:
	case ia.Decl != ib.Decl || len(ia.Args) != len(ib.Args):
		diag.ReportError(in.env.Reporter, diag.SemaTypeMismatch, why.Span,
			fmt.Sprintf("effect mismatch between `%s` and `%s`", in.displayEffect(a), in.displayEffect(b))).
			WithNote(in.effects[a].span, "this effect").
			WithNote(in.effects[b].span, "does not match this one").
			Emit()
	default:
		for i := range ia.Args {
			in.flow(ia.Args[i], ib.Args[i], why)
		}
	}
}
