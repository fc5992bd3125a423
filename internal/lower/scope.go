package lower

import (
	"github.com/benbjohnson/immutable"

	"tao/internal/infer"
	"tao/internal/types"
)

type scopeKind uint8

const (
	scopeEmpty scopeKind = iota
	scopeLocal
	scopeMany
	scopeRecursive
	scopeBasin
)

// Scope is a persistent chain of bindings. Extending a scope never changes
// the scopes already handed out, so sibling branches cannot see each other.
type Scope struct {
	parent *Scope
	kind   scopeKind
	name   string
	v      infer.TyVar
	many   *immutable.SortedMap // name -> infer.TyVar
	def    types.DefID
	gens   []infer.TyVar
	eff    infer.EffectVar
}

// Bound is a name introduced by a pattern.
type Bound struct {
	Name string
	Var  infer.TyVar
}

// Found is the result of a scope lookup.
type Found struct {
	Var infer.TyVar
	// Recursive hits name the definition being checked; Def and Gens say
	// how to refer to it.
	Recursive bool
	Def       types.DefID
	Gens      []infer.TyVar
}

var emptyScope = &Scope{kind: scopeEmpty}

// EmptyScope is the root of every chain.
func EmptyScope() *Scope { return emptyScope }

// With binds one name.
func (s *Scope) With(name string, v infer.TyVar) *Scope {
	return &Scope{parent: s, kind: scopeLocal, name: name, v: v}
}

// WithMany binds the names of one pattern. Later duplicates win.
func (s *Scope) WithMany(bound []Bound) *Scope {
	if len(bound) == 0 {
		return s
	}
	m := immutable.NewSortedMap(nil)
	for _, b := range bound {
		m = m.Set(b.Name, b.Var)
	}
	return &Scope{parent: s, kind: scopeMany, many: m}
}

// WithRecursive makes the definition being checked visible to its own body.
func (s *Scope) WithRecursive(name string, v infer.TyVar, def types.DefID, gens []infer.TyVar) *Scope {
	return &Scope{parent: s, kind: scopeRecursive, name: name, v: v, def: def, gens: gens}
}

// WithBasin opens a basin whose effects are collected in eff.
func (s *Scope) WithBasin(eff infer.EffectVar) *Scope {
	return &Scope{parent: s, kind: scopeBasin, eff: eff}
}

// Find looks name up, innermost binding first.
func (s *Scope) Find(name string) (Found, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		switch cur.kind {
		case scopeLocal:
			if cur.name == name {
				return Found{Var: cur.v}, true
			}
		case scopeMany:
			if v, ok := cur.many.Get(name); ok {
				return Found{Var: v.(infer.TyVar)}, true
			}
		case scopeRecursive:
			if cur.name == name {
				return Found{Var: cur.v, Recursive: true, Def: cur.def, Gens: cur.gens}, true
			}
		}
	}
	return Found{}, false
}

// LastBasin returns the effect of the innermost enclosing basin.
func (s *Scope) LastBasin() (infer.EffectVar, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == scopeBasin {
			return cur.eff, true
		}
	}
	return 0, false
}

// Names lists every name visible from s, innermost first, without duplicates.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for cur := s; cur != nil; cur = cur.parent {
		switch cur.kind {
		case scopeLocal, scopeRecursive:
			add(cur.name)
		case scopeMany:
			it := cur.many.Iterator()
			for !it.Done() {
				k, _ := it.Next()
				add(k.(string))
			}
		}
	}
	return out
}
