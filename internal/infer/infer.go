// Package infer is the constraint solver. One Infer session checks one
// definition body: lowering allocates variables and posts constraints, Solve
// runs them to a fixed point and Reify turns the survivors into store types.
package infer

import (
	"fmt"

	"fortio.org/safecast"

	"tao/internal/diag"
	"tao/internal/source"
	"tao/internal/symbols"
	"tao/internal/types"
)

// Env is what a session needs from the rest of the compiler.
type Env struct {
	Store    *types.Store
	Table    *symbols.Table
	Reporter diag.Reporter
}

type varSlot struct {
	span source.Span
	info TyInfo
}

type effSlot struct {
	span source.Span
	info EffectInfo
}

type classSlot struct {
	span  source.Span
	class types.ClassID
}

// Infer is a single solver session. It is not safe for concurrent use.
type Infer struct {
	env      Env
	genScope types.GenScopeID
	self     TyVar

	vars    []varSlot
	effects []effSlot
	classes []classSlot

	pending []*constraint
	seq     int

	reified    map[TyVar]types.TyID
	reifying   map[TyVar]bool
	effReified map[EffectVar]types.EffectID
	cantInfer  map[TyVar]bool
	solved     bool
}

// New opens a session whose generic parameters live in genScope.
func New(env Env, genScope types.GenScopeID) *Infer {
	return &Infer{
		env:        env,
		genScope:   genScope,
		vars:       []varSlot{{info: Error(types.ReasonUnknown)}},
		effects:    []effSlot{{info: EffectInfo{Kind: EffError}}},
		classes:    []classSlot{{}},
		reified:    make(map[TyVar]types.TyID),
		reifying:   make(map[TyVar]bool),
		effReified: make(map[EffectVar]types.EffectID),
		cantInfer:  make(map[TyVar]bool),
	}
}

// Env returns the environment the session was opened with.
func (in *Infer) Env() Env { return in.env }

// GenScope is the scope whose parameters are rigid inside this session.
func (in *Infer) GenScope() types.GenScopeID { return in.genScope }

// SetSelf makes Self mean v while lowering member bodies.
func (in *Infer) SetSelf(v TyVar) { in.self = v }

// SelfType returns the var Self stands for, if any.
func (in *Infer) SelfType() (TyVar, bool) { return in.self, in.self != 0 }

func index(n int, what string) uint32 {
	id, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("infer: %s overflow: %w", what, err))
	}
	return id
}

// Insert allocates a var with the given knowledge.
func (in *Infer) Insert(span source.Span, info TyInfo) TyVar {
	v := TyVar(index(len(in.vars), "len(vars)"))
	in.vars = append(in.vars, varSlot{span: span, info: info})
	return v
}

// Unknown allocates a fresh unknown var.
func (in *Infer) Unknown(span source.Span) TyVar { return in.Insert(span, Unknown()) }

// UnknownEffect allocates a fresh unknown effect var.
func (in *Infer) UnknownEffect(span source.Span) EffectVar {
	return in.InsertEffect(span, EffectInfo{Kind: EffUnknown})
}

// InsertEffect allocates an effect var.
func (in *Infer) InsertEffect(span source.Span, info EffectInfo) EffectVar {
	e := EffectVar(index(len(in.effects), "len(effects)"))
	in.effects = append(in.effects, effSlot{span: span, info: info})
	return e
}

func (in *Infer) newClassVar(span source.Span, class types.ClassID) ClassVar {
	c := ClassVar(index(len(in.classes), "len(classes)"))
	in.classes = append(in.classes, classSlot{span: span, class: class})
	return c
}

// Span returns where v was introduced.
func (in *Infer) Span(v TyVar) source.Span { return in.vars[v].span }

// Info returns the knowledge about v after following links.
func (in *Infer) Info(v TyVar) TyInfo { return in.vars[in.follow(v)].info }

// Len returns the number of allocated vars.
func (in *Infer) Len() int { return len(in.vars) - 1 }

func (in *Infer) follow(v TyVar) TyVar {
	root := v
	for in.vars[root].info.Kind == InfoRef {
		root = in.vars[root].info.Ref
	}
	// path compression
	for v != root {
		next := in.vars[v].info.Ref
		in.vars[v].info = Ref(root)
		v = next
	}
	return root
}

func (in *Infer) followEffect(e EffectVar) EffectVar {
	for in.effects[e].info.Kind == EffRef {
		e = in.effects[e].info.Ref
	}
	return e
}

func (in *Infer) set(v TyVar, info TyInfo) { in.vars[v].info = info }

// poison makes v an error so later stages stay quiet about it.
func (in *Infer) poison(v TyVar) {
	v = in.follow(v)
	if in.vars[v].info.Kind == InfoUnknown {
		in.set(v, Error(types.ReasonUnknown))
	}
}

// Instantiate copies a store type into fresh vars. Generic parameters found by
// gens become the returned vars, the rest stay rigid. Self becomes self when it
// is non-zero, the session's Self otherwise.
func (in *Infer) Instantiate(ty types.TyID, span source.Span, gens func(scope types.GenScopeID, idx int) (TyVar, bool), self TyVar) TyVar {
	if ty == types.NoTyID {
		return in.Unknown(span)
	}
	t := in.env.Store.Get(ty)
	switch t.Kind {
	case types.KindError:
		return in.Insert(span, Error(t.Reason))
	case types.KindPrim:
		return in.Insert(span, Prim(t.Prim))
	case types.KindList:
		return in.Insert(span, List(in.Instantiate(t.Elem, span, gens, self)))
	case types.KindTuple:
		items := make([]TyVar, len(t.Items))
		for i, it := range t.Items {
			items[i] = in.Instantiate(it, span, gens, self)
		}
		return in.Insert(span, Tuple(items...))
	case types.KindRecord:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Var: in.Instantiate(f.Ty, span, gens, self)}
		}
		return in.Insert(span, Record(fields))
	case types.KindFunc:
		return in.Insert(span, Func(in.Instantiate(t.In, span, gens, self), in.Instantiate(t.Out, span, gens, self)))
	case types.KindData:
		args := make([]TyVar, len(t.Items))
		for i, a := range t.Items {
			args[i] = in.Instantiate(a, span, gens, self)
		}
		return in.Insert(span, Data(t.Data, args))
	case types.KindGen:
		if gens != nil {
			if v, ok := gens(t.Scope, t.Index); ok {
				return v
			}
		}
		return in.Insert(span, Gen(t.Scope, t.Index))
	case types.KindSelf:
		if self != 0 {
			return self
		}
		if in.self != 0 {
			return in.self
		}
		return in.Insert(span, Self())
	case types.KindAssoc:
		base := in.Instantiate(t.Elem, span, gens, self)
		out := in.Unknown(span)
		in.makeClassAssoc(base, t.Class, t.Name, out, span)
		return out
	case types.KindEffect:
		e := in.env.Store.Effect(t.Effect)
		var eff EffectVar
		if e.Known {
			args := make([]TyVar, len(e.Args))
			for i, a := range e.Args {
				args[i] = in.Instantiate(a, span, gens, self)
			}
			eff = in.InsertEffect(span, KnownEffect(e.Decl, args))
		} else {
			eff = in.UnknownEffect(span)
		}
		return in.Insert(span, EffectObj(eff, in.Instantiate(t.Elem, span, gens, self)))
	}
	panic(fmt.Sprintf("infer: unexpected type kind %s", t.Kind))
}

// Reinstantiate gives a recursive reference its own var: known structure is
// copied, unknown parts stay shared with v so both uses stay consistent.
func (in *Infer) Reinstantiate(span source.Span, v TyVar) TyVar {
	return in.copyKnown(span, v, 0)
}

func (in *Infer) copyKnown(span source.Span, v TyVar, depth int) TyVar {
	v = in.follow(v)
	info := in.vars[v].info
	if depth > 64 {
		return in.Insert(span, Ref(v))
	}
	cp := func(x TyVar) TyVar { return in.copyKnown(span, x, depth+1) }
	switch info.Kind {
	case InfoUnknown:
		return in.Insert(span, Ref(v))
	case InfoList:
		return in.Insert(span, List(cp(info.Elem)))
	case InfoTuple:
		items := make([]TyVar, len(info.Items))
		for i, it := range info.Items {
			items[i] = cp(it)
		}
		return in.Insert(span, Tuple(items...))
	case InfoRecord:
		fields := make([]Field, len(info.Fields))
		for i, f := range info.Fields {
			fields[i] = Field{Name: f.Name, Var: cp(f.Var)}
		}
		return in.Insert(span, Record(fields))
	case InfoFunc:
		return in.Insert(span, Func(cp(info.In), cp(info.Out)))
	case InfoData:
		args := make([]TyVar, len(info.Items))
		for i, a := range info.Items {
			args[i] = cp(a)
		}
		return in.Insert(span, Data(info.Data, args))
	case InfoAssoc:
		return in.Insert(span, Assoc(cp(info.Elem), info.Class, info.Name))
	case InfoEffect:
		return in.Insert(span, EffectObj(info.Effect, cp(info.Elem)))
	default:
		return in.Insert(span, info)
	}
}
