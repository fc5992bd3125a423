package infer

import "tao/internal/types"

type matchResult uint8

const (
	matchNo matchResult = iota
	matchMaybe
	matchYes
)

func all(rs ...matchResult) matchResult {
	out := matchYes
	for _, r := range rs {
		if r == matchNo {
			return matchNo
		}
		if r == matchMaybe {
			out = matchMaybe
		}
	}
	return out
}

// match compares a member's declared self type against v. Generics of scope
// bind to whatever they meet; binds records them so repeated generics agree.
func (in *Infer) match(ty types.TyID, scope types.GenScopeID, v TyVar, binds map[int]TyVar, depth int) matchResult {
	if depth > 64 {
		return matchMaybe
	}
	t := in.env.Store.Get(ty)
	if t.Kind == types.KindGen && t.Scope == scope {
		if prev, ok := binds[t.Index]; ok {
			return in.same(prev, v, 0)
		}
		binds[t.Index] = v
		return matchYes
	}
	info := in.vars[in.follow(v)].info
	switch info.Kind {
	case InfoUnknown:
		return matchMaybe
	case InfoError:
		return matchYes
	}
	sub := func(ty types.TyID, v TyVar) matchResult { return in.match(ty, scope, v, binds, depth+1) }
	switch t.Kind {
	case types.KindPrim:
		if info.Kind == InfoPrim && info.Prim == t.Prim {
			return matchYes
		}
	case types.KindList:
		if info.Kind == InfoList {
			return sub(t.Elem, info.Elem)
		}
	case types.KindTuple:
		if info.Kind == InfoTuple && len(info.Items) == len(t.Items) {
			rs := make([]matchResult, len(t.Items))
			for i := range t.Items {
				rs[i] = sub(t.Items[i], info.Items[i])
			}
			return all(rs...)
		}
	case types.KindRecord:
		if info.Kind == InfoRecord && len(info.Fields) == len(t.Fields) {
			rs := make([]matchResult, len(t.Fields))
			for i := range t.Fields {
				if t.Fields[i].Name != info.Fields[i].Name {
					return matchNo
				}
				rs[i] = sub(t.Fields[i].Ty, info.Fields[i].Var)
			}
			return all(rs...)
		}
	case types.KindFunc:
		if info.Kind == InfoFunc {
			return all(sub(t.In, info.In), sub(t.Out, info.Out))
		}
	case types.KindData:
		if info.Kind == InfoData && info.Data == t.Data && len(info.Items) == len(t.Items) {
			rs := make([]matchResult, len(t.Items))
			for i := range t.Items {
				rs[i] = sub(t.Items[i], info.Items[i])
			}
			return all(rs...)
		}
	case types.KindEffect:
		if info.Kind != InfoEffect {
			return matchNo
		}
		e := in.env.Store.Effect(t.Effect)
		ve := in.effects[in.followEffect(info.Effect)].info
		switch {
		case ve.Kind == EffUnknown:
			return matchMaybe
		case !e.Known || ve.Kind != EffKnown || ve.Decl != e.Decl || len(ve.Args) != len(e.Args):
			return matchNo
		}
		rs := []matchResult{sub(t.Elem, info.Elem)}
		for i := range e.Args {
			rs = append(rs, sub(e.Args[i], ve.Args[i]))
		}
		return all(rs...)
	}
	return matchNo
}

// same decides whether two vars already denote the same type.
func (in *Infer) same(a, b TyVar, depth int) matchResult {
	a, b = in.follow(a), in.follow(b)
	if a == b {
		return matchYes
	}
	if depth > 64 {
		return matchMaybe
	}
	ia, ib := in.vars[a].info, in.vars[b].info
	if ia.Kind == InfoUnknown || ib.Kind == InfoUnknown {
		return matchMaybe
	}
	if ia.Kind == InfoError || ib.Kind == InfoError {
		return matchYes
	}
	if ia.Kind != ib.Kind {
		return matchNo
	}
	rec := func(x, y TyVar) matchResult { return in.same(x, y, depth+1) }
	switch ia.Kind {
	case InfoPrim:
		if ia.Prim == ib.Prim {
			return matchYes
		}
	case InfoList:
		return rec(ia.Elem, ib.Elem)
	case InfoTuple, InfoData:
		if len(ia.Items) != len(ib.Items) || ia.Data != ib.Data {
			return matchNo
		}
		rs := make([]matchResult, len(ia.Items))
		for i := range ia.Items {
			rs[i] = rec(ia.Items[i], ib.Items[i])
		}
		return all(rs...)
	case InfoRecord:
		if !sameFieldNames(ia.Fields, ib.Fields) {
			return matchNo
		}
		rs := make([]matchResult, len(ia.Fields))
		for i := range ia.Fields {
			rs[i] = rec(ia.Fields[i].Var, ib.Fields[i].Var)
		}
		return all(rs...)
	case InfoFunc:
		return all(rec(ia.In, ib.In), rec(ia.Out, ib.Out))
	case InfoGen:
		if ia.Index == ib.Index {
			return matchYes
		}
	case InfoSelf:
		return matchYes
	case InfoAssoc:
		if ia.Class == ib.Class && ia.Name == ib.Name {
			return rec(ia.Elem, ib.Elem)
		}
	case InfoEffect:
		ea := in.effects[in.followEffect(ia.Effect)].info
		eb := in.effects[in.followEffect(ib.Effect)].info
		if ea.Kind == EffUnknown || eb.Kind == EffUnknown {
			return matchMaybe
		}
		if ea.Decl != eb.Decl || len(ea.Args) != len(eb.Args) {
			return matchNo
		}
		rs := []matchResult{rec(ia.Elem, ib.Elem)}
		for i := range ea.Args {
			rs = append(rs, rec(ea.Args[i], eb.Args[i]))
		}
		return all(rs...)
	}
	return matchNo
}
