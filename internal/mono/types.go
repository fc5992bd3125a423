package mono

import (
	"github.com/hashicorp/go-set/v3"

	"tao/internal/symbols"
	"tao/internal/types"
)

// ty turns a checked type into a concrete one in the context of c.
func (c *concretizer) ty(id types.TyID) types.ConTyID {
	if id == types.NoTyID {
		c.fail("missing type")
	}
	in := c.s.out.Types
	t := c.s.prog.Store.Get(id)
	switch t.Kind {
	case types.KindError:
		c.fail("error type %s survived checking", t.Reason)
	case types.KindPrim:
		return in.Prim(t.Prim)
	case types.KindList:
		return in.Intern(types.ConTy{Kind: types.ConList, Elem: c.ty(t.Elem)})
	case types.KindTuple:
		return in.Intern(types.ConTy{Kind: types.ConTuple, Items: c.tys(t.Items)})
	case types.KindRecord:
		fs := make([]types.ConField, len(t.Fields))
		for i, f := range t.Fields {
			fs[i] = types.ConField{Name: f.Name, Ty: c.ty(f.Ty)}
		}
		return in.Intern(types.ConTy{Kind: types.ConRecord, Fields: fs})
	case types.KindFunc:
		return in.Intern(types.ConTy{Kind: types.ConFunc, In: c.ty(t.In), Out: c.ty(t.Out)})
	case types.KindData:
		return in.Intern(types.ConTy{Kind: types.ConData, Data: t.Data, Items: c.tys(t.Items)})
	case types.KindGen:
		if t.Scope != c.scope || t.Index >= len(c.args) {
			c.fail("generic %d of scope %d used outside its scope", t.Index, t.Scope)
		}
		return c.args[t.Index]
	case types.KindSelf:
		if c.self == types.NoConTyID {
			c.fail("Self used outside a member")
		}
		return c.self
	case types.KindAssoc:
		base := c.ty(t.Elem)
		_, m, args := c.selectMember(t.Class, base)
		assoc, ok := m.AssocTy(t.Name)
		if !ok {
			c.fail("member of %s for %s has no associated type %s",
				c.s.prog.Table.ClassName(t.Class), in.Display(base, c.s.out.Names), t.Name)
		}
		return c.with(m.GenScope, args, base).ty(assoc)
	case types.KindEffect:
		eff := c.effect(t.Effect)
		et := in.MustLookup(eff)
		et.Elem = c.ty(t.Elem)
		return in.Intern(et)
	default:
		c.fail("unexpected type kind %s", t.Kind)
	}
	panic("unreachable")
}

func (c *concretizer) tys(ids []types.TyID) []types.ConTyID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]types.ConTyID, len(ids))
	for i, id := range ids {
		out[i] = c.ty(id)
	}
	return out
}

// effect returns the effect raised by a basin or handler as an effect type
// without a result. An effect nothing was ever raised into stays undeclared.
func (c *concretizer) effect(id types.EffectID) types.ConTyID {
	e := c.s.prog.Store.Effect(id)
	if !e.Known {
		return c.s.out.Types.Intern(types.ConTy{Kind: types.ConEffect})
	}
	return c.s.out.Types.Intern(types.ConTy{Kind: types.ConEffect, Effect: e.Decl, Items: c.tys(e.Args)})
}

// selectMember finds the one member of class whose self type matches self and
// returns it with the arguments for its generics.
func (c *concretizer) selectMember(class types.ClassID, self types.ConTyID) (types.MemberID, *symbols.Member, []types.ConTyID) {
	table := c.s.prog.Table
	var (
		foundID types.MemberID
		links   map[int]types.ConTyID
		matches int
	)
	for _, id := range table.MembersOf(class) {
		m := table.Member(id)
		if m.Self == types.NoTyID {
			continue
		}
		l := make(map[int]types.ConTyID)
		if !c.derive(m.Self, self, m.GenScope, l) {
			continue
		}
		matches++
		foundID, links = id, l
	}
	switch matches {
	case 0:
		c.fail("no member of %s for %s", table.ClassName(class), c.s.out.Types.Display(self, c.s.out.Names))
	case 1:
	default:
		c.fail("%d members of %s match %s", matches, table.ClassName(class), c.s.out.Types.Display(self, c.s.out.Names))
	}

	m := table.Member(foundID)
	n := c.s.prog.Store.GenScope(m.GenScope).Len()
	if n == 0 {
		return foundID, m, nil
	}
	args := make([]types.ConTyID, n)
	for i := range args {
		a, ok := links[i]
		if !ok {
			c.fail("generic %d of member %d is not determined by its self type", i, foundID)
		}
		args[i] = a
	}
	return foundID, m, args
}

// derive matches the member self type ty against con, recording what each
// generic of scope must be.
func (c *concretizer) derive(ty types.TyID, con types.ConTyID, scope types.GenScopeID, links map[int]types.ConTyID) bool {
	t := c.s.prog.Store.Get(ty)
	ct := c.s.out.Types.MustLookup(con)
	switch t.Kind {
	case types.KindGen:
		if t.Scope != scope {
			return false
		}
		if prev, ok := links[t.Index]; ok {
			return prev == con
		}
		links[t.Index] = con
		return true
	case types.KindPrim:
		return ct.Kind == types.ConPrim && ct.Prim == t.Prim
	case types.KindList:
		return ct.Kind == types.ConList && c.derive(t.Elem, ct.Elem, scope, links)
	case types.KindTuple:
		return ct.Kind == types.ConTuple && c.deriveAll(t.Items, ct.Items, scope, links)
	case types.KindRecord:
		if ct.Kind != types.ConRecord || len(ct.Fields) != len(t.Fields) {
			return false
		}
		for i, f := range t.Fields {
			if ct.Fields[i].Name != f.Name || !c.derive(f.Ty, ct.Fields[i].Ty, scope, links) {
				return false
			}
		}
		return true
	case types.KindFunc:
		return ct.Kind == types.ConFunc &&
			c.derive(t.In, ct.In, scope, links) &&
			c.derive(t.Out, ct.Out, scope, links)
	case types.KindData:
		return ct.Kind == types.ConData && ct.Data == t.Data && c.deriveAll(t.Items, ct.Items, scope, links)
	default:
		return false
	}
}

func (c *concretizer) deriveAll(ts []types.TyID, cs []types.ConTyID, scope types.GenScopeID, links map[int]types.ConTyID) bool {
	if len(ts) != len(cs) {
		return false
	}
	for i := range ts {
		if !c.derive(ts[i], cs[i], scope, links) {
			return false
		}
	}
	return true
}

// followFieldAccess finds field in a value of type ty, looking through data
// types with a single constructor. It returns the record type holding the
// field and how many constructor layers were unwrapped to reach it.
func (c *concretizer) followFieldAccess(ty types.ConTyID, field string) (record, fieldTy types.ConTyID, indirections int, ok bool) {
	in := c.s.out.Types
	table := c.s.prog.Table
	seen := set.New[types.DataID](0)
	cur := ty
	for {
		t, found := in.Lookup(cur)
		if !found {
			return types.NoConTyID, types.NoConTyID, 0, false
		}
		switch t.Kind {
		case types.ConRecord:
			f, has := t.FieldTy(field)
			if !has {
				return types.NoConTyID, types.NoConTyID, 0, false
			}
			return cur, f, indirections, true
		case types.ConData:
			d := table.Data(t.Data)
			if d == nil || len(d.Cons) != 1 || seen.Contains(t.Data) {
				return types.NoConTyID, types.NoConTyID, 0, false
			}
			seen.Insert(t.Data)
			cur = c.with(d.GenScope, t.Items, types.NoConTyID).ty(d.Cons[0].Payload)
			indirections++
		default:
			return types.NoConTyID, types.NoConTyID, 0, false
		}
	}
}

// FollowFieldAccess finds field in a value of type ty the way field access
// does: through any number of single-constructor data layers. indirections
// counts the layers.
func (p *Program) FollowFieldAccess(ty types.ConTyID, field string) (record, fieldTy types.ConTyID, indirections int, ok bool) {
	if p.src == nil {
		return types.NoConTyID, types.NoConTyID, 0, false
	}
	c := &concretizer{s: &shared{prog: p.src, out: p}}
	err := func() (err error) {
		defer recoverInternal(&err)
		record, fieldTy, indirections, ok = c.followFieldAccess(ty, field)
		return nil
	}()
	if err != nil {
		return types.NoConTyID, types.NoConTyID, 0, false
	}
	return record, fieldTy, indirections, ok
}
