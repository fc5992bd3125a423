package hir

import (
	"slices"

	"tao/internal/source"
	"tao/internal/symbols"
	"tao/internal/types"
)

// Program is a fully lowered and solved module.
type Program struct {
	Store *types.Store
	Table *symbols.Table
	// Root spans the whole module; diagnostics without a better place use it.
	Root source.Span
	// Defs holds definition bodies; defs whose lowering failed are absent.
	Defs map[types.DefID]*Expr
	// Members holds member field bodies keyed by field name.
	Members map[types.MemberID]map[string]*Expr
}

// NewProgram creates an empty program over store and table.
func NewProgram(store *types.Store, table *symbols.Table, root source.Span) *Program {
	return &Program{
		Store:   store,
		Table:   table,
		Root:    root,
		Defs:    make(map[types.DefID]*Expr),
		Members: make(map[types.MemberID]map[string]*Expr),
	}
}

// SetMemberField records the body of field name of member m.
func (p *Program) SetMemberField(m types.MemberID, name string, body *Expr) {
	fields := p.Members[m]
	if fields == nil {
		fields = make(map[string]*Expr)
		p.Members[m] = fields
	}
	fields[name] = body
}

// MemberField returns the body of field name of member m.
func (p *Program) MemberField(m types.MemberID, name string) (*Expr, bool) {
	e, ok := p.Members[m][name]
	return e, ok
}

// DefIDs returns the ids of lowered definitions in ascending order.
func (p *Program) DefIDs() []types.DefID {
	ids := make([]types.DefID, 0, len(p.Defs))
	for id := range p.Defs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MemberIDs returns the ids of members with at least one lowered field.
func (p *Program) MemberIDs() []types.MemberID {
	ids := make([]types.MemberID, 0, len(p.Members))
	for id := range p.Members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
