package types

import (
	"fmt"

	"tao/internal/diag"
	"tao/internal/source"
)

// WrittenObligation is a class name as it appears after a generic parameter.
type WrittenObligation struct {
	Class string
	Span  source.Span
}

// Obligation is a resolved class requirement on a generic parameter.
type Obligation struct {
	Class ClassID
	Span  source.Span
}

// GenParam is one generic parameter.
type GenParam struct {
	Name    string
	Span    source.Span
	Written []WrittenObligation

	obligations []Obligation
	checked     bool
}

// Obligations returns the resolved requirements. Calling it before
// Store.CheckGenScopes is a programming error and panics.
func (p *GenParam) Obligations() []Obligation {
	if !p.checked {
		panic(fmt.Sprintf("types: obligations of generic %q read before CheckGenScopes", p.Name))
	}
	return p.obligations
}

// GenScope is the ordered generic parameter list of a definition, data type,
// alias, effect or class member.
type GenScope struct {
	Span   source.Span
	Params []GenParam
}

// Len returns the number of parameters.
func (g *GenScope) Len() int { return len(g.Params) }

// Find returns the index of the parameter called name.
func (g *GenScope) Find(name string) (int, bool) {
	for i := range g.Params {
		if g.Params[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// InsertGenScope registers a scope. Scopes added after CheckGenScopes stay unchecked.
func (s *Store) InsertGenScope(g GenScope) GenScopeID {
	id := GenScopeID(nextID(len(s.scopes), "len(scopes)"))
	s.scopes = append(s.scopes, g)
	return id
}

// GenScope returns the scope for id. NoGenScope is an empty scope.
func (s *Store) GenScope(id GenScopeID) *GenScope {
	if int(id) >= len(s.scopes) {
		panic(fmt.Sprintf("types: invalid GenScopeID %d", id))
	}
	return &s.scopes[id]
}

// GenScopesChecked reports whether CheckGenScopes already ran.
func (s *Store) GenScopesChecked() bool { return s.checked }

// CheckGenScopes resolves every written obligation of every registered scope to
// a class id, reporting one SemaNoSuchClass per unresolved name. Afterwards every
// parameter's obligation list is readable.
func (s *Store) CheckGenScopes(resolve func(name string) (ClassID, bool), r diag.Reporter) {
	for i := range s.scopes {
		for j := range s.scopes[i].Params {
			p := &s.scopes[i].Params[j]
			p.obligations = p.obligations[:0]
			for _, w := range p.Written {
				class, ok := resolve(w.Class)
				if !ok {
					diag.ReportError(r, diag.SemaNoSuchClass, w.Span,
						fmt.Sprintf("no such class `%s`", w.Class)).
						WithNote(p.Span, fmt.Sprintf("required of generic `%s` here", p.Name)).
						Emit()
					continue
				}
				p.obligations = append(p.obligations, Obligation{Class: class, Span: w.Span})
			}
			p.checked = true
		}
	}
	s.checked = true
}
