package infer

import (
	"tao/internal/diag"
	"tao/internal/types"
)

// Reify writes what is known about v into the store. Unknowns that survived
// Solve are reported once per root var and become error types.
func (in *Infer) Reify(v TyVar) types.TyID {
	root := in.follow(v)
	if id, ok := in.reified[root]; ok {
		return id
	}
	slot := in.vars[root]
	store := in.env.Store
	if in.reifying[root] {
		return store.Insert(slot.span, types.MakeError(types.ReasonRecursive))
	}
	in.reifying[root] = true
	defer delete(in.reifying, root)

	info := slot.info
	var t types.Ty
	switch info.Kind {
	case InfoUnknown:
		in.reportCannotInfer(root)
		t = types.MakeError(types.ReasonUnknown)
	case InfoError:
		t = types.MakeError(info.Reason)
	case InfoPrim:
		t = types.MakePrim(info.Prim)
	case InfoList:
		t = types.MakeList(in.Reify(info.Elem))
	case InfoTuple:
		t = types.MakeTuple(in.reifyAll(info.Items)...)
	case InfoRecord:
		fields := make([]types.Field, len(info.Fields))
		for i, f := range info.Fields {
			fields[i] = types.Field{Name: f.Name, Ty: in.Reify(f.Var)}
		}
		t = types.MakeRecord(fields)
	case InfoFunc:
		t = types.MakeFunc(in.Reify(info.In), in.Reify(info.Out))
	case InfoData:
		t = types.MakeData(info.Data, in.reifyAll(info.Items))
	case InfoGen:
		t = types.MakeGen(info.Scope, info.Index)
	case InfoSelf:
		t = types.MakeSelf()
	case InfoAssoc:
		t = types.MakeAssoc(in.Reify(info.Elem), info.Class, info.Name)
	case InfoEffect:
		t = types.MakeEffect(in.ReifyEffect(info.Effect), in.Reify(info.Elem))
	}
	id := store.Insert(slot.span, t)
	in.reified[root] = id
	return id
}

func (in *Infer) reifyAll(vs []TyVar) []types.TyID {
	out := make([]types.TyID, len(vs))
	for i, v := range vs {
		out[i] = in.Reify(v)
	}
	return out
}

// ReifyEffect writes an effect var into the store. An effect nothing decided
// stays unknown; it is a basin that never suspends.
func (in *Infer) ReifyEffect(e EffectVar) types.EffectID {
	root := in.followEffect(e)
	if id, ok := in.effReified[root]; ok {
		return id
	}
	slot := in.effects[root]
	eff := types.UnknownEffect()
	if slot.info.Kind == EffKnown {
		eff = types.KnownEffect(slot.info.Decl, in.reifyAll(slot.info.Args))
	}
	id := in.env.Store.InsertEffect(slot.span, eff)
	in.effReified[root] = id
	return id
}

func (in *Infer) reportCannotInfer(root TyVar) {
	if in.cantInfer[root] {
		return
	}
	in.cantInfer[root] = true
	slot := in.vars[root]
	b := diag.ReportError(in.env.Reporter, diag.SemaCannotInfer, slot.span, "cannot infer type")
	if slot.info.HasOrigin {
		b.WithNote(slot.info.Origin, "the type of this generic parameter could not be decided")
	}
	b.Emit()
}
