package symbols

import (
	"fmt"

	"tao/internal/ast"
	"tao/internal/source"
	"tao/internal/types"
)

// Def is a top-level definition.
type Def struct {
	Name     string
	Span     source.Span
	Attrs    []ast.Attr
	GenScope types.GenScopeID
	// Hint is the declared type, NoTyID when absent.
	Hint types.TyID
	// BodyTy is the inferred type of the body, NoTyID until the body is solved.
	BodyTy types.TyID
	Syntax *ast.Def
}

// Cons is one constructor of a data type.
type Cons struct {
	Name    string
	Span    source.Span
	Payload types.TyID
}

// Data is a nominal data type.
type Data struct {
	Name     string
	Span     source.Span
	GenScope types.GenScopeID
	Cons     []Cons
	Syntax   *ast.Data
}

// AliasState tracks lazy alias lowering so self-reference can be detected.
type AliasState uint8

const (
	AliasPending AliasState = iota
	AliasLowering
	AliasDone
)

// Alias is a type synonym.
type Alias struct {
	Name     string
	Span     source.Span
	GenScope types.GenScopeID
	Ty       types.TyID
	State    AliasState
	Syntax   *ast.Alias
}

// EffectDecl is a declared algebraic effect.
type EffectDecl struct {
	Name     string
	Span     source.Span
	GenScope types.GenScopeID
	Send     types.TyID
	Recv     types.TyID
	Syntax   *ast.Effect
}

// ClassField is a member signature declared by a class; Ty may mention Self.
type ClassField struct {
	Name string
	Span source.Span
	Ty   types.TyID
}

// Class is an ad hoc polymorphism interface.
type Class struct {
	Name   string
	Span   source.Span
	Fields []ClassField
	Assoc  []ast.Ident
	Syntax *ast.Class
}

// Field finds a class field by name.
func (c *Class) Field(name string) (*ClassField, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// HasAssoc reports whether the class declares associated type name.
func (c *Class) HasAssoc(name string) bool {
	for _, a := range c.Assoc {
		if a.Name == name {
			return true
		}
	}
	return false
}

// MemberAssoc is a concrete associated type given by a member.
type MemberAssoc struct {
	Name string
	Span source.Span
	Ty   types.TyID
}

// Member implements Class for Self.
type Member struct {
	Span      source.Span
	GenScope  types.GenScopeID
	Self      types.TyID
	Class     types.ClassID // 0 when the class name did not resolve
	ClassName ast.Ident
	Assoc     []MemberAssoc
	Syntax    *ast.Member
}

// AssocTy finds the associated type called name.
func (m *Member) AssocTy(name string) (types.TyID, bool) {
	for _, a := range m.Assoc {
		if a.Name == name {
			return a.Ty, true
		}
	}
	return types.NoTyID, false
}

// Lang holds the items the language itself refers to.
type Lang struct {
	Eq  types.ClassID
	Neg types.ClassID
	Not types.ClassID
	Go  types.DataID

	IoUnit types.DefID
	IoBind types.DefID
}

// LangDef returns the definition marked `$[lang(name)]`.
func (l *Lang) LangDef(name string) (types.DefID, bool) {
	var id types.DefID
	switch name {
	case "io_unit":
		id = l.IoUnit
	case "io_bind":
		id = l.IoBind
	}
	return id, id != 0
}

// Table is the registry of every item of a module.
type Table struct {
	Defs    *Arena[Def]
	Datas   *Arena[Data]
	Aliases *Arena[Alias]
	Effects *Arena[EffectDecl]
	Classes *Arena[Class]
	Members *Arena[Member]
	Lang    Lang

	defs    map[string]types.DefID
	datas   map[string]types.DataID
	cons    map[string]types.DataID
	aliases map[string]types.AliasID
	effects map[string]types.EffectDeclID
	classes map[string]types.ClassID
	// type names share one namespace: data, alias
	typeSpans map[string]source.Span
}

// NewTable constructs an empty registry.
func NewTable() *Table {
	return &Table{
		Defs:      NewArena[Def](16),
		Datas:     NewArena[Data](8),
		Aliases:   NewArena[Alias](4),
		Effects:   NewArena[EffectDecl](4),
		Classes:   NewArena[Class](4),
		Members:   NewArena[Member](4),
		defs:      make(map[string]types.DefID),
		datas:     make(map[string]types.DataID),
		cons:      make(map[string]types.DataID),
		aliases:   make(map[string]types.AliasID),
		effects:   make(map[string]types.EffectDeclID),
		classes:   make(map[string]types.ClassID),
		typeSpans: make(map[string]source.Span),
	}
}

// DuplicateError describes a name declared twice.
type DuplicateError struct {
	Kind     string
	Name     string
	Span     source.Span
	Previous source.Span
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s `%s` is declared more than once", e.Kind, e.Name)
}

// AddDef registers a definition.
func (t *Table) AddDef(d Def) (types.DefID, error) {
	if prev, ok := t.defs[d.Name]; ok {
		return prev, &DuplicateError{Kind: "definition", Name: d.Name, Span: d.Span, Previous: t.Defs.Get(uint32(prev)).Span}
	}
	id := types.DefID(t.Defs.Allocate(d))
	t.defs[d.Name] = id
	return id, nil
}

// AddData registers a data type and its constructors.
func (t *Table) AddData(d Data) (types.DataID, error) {
	if prev, ok := t.typeSpans[d.Name]; ok {
		return 0, &DuplicateError{Kind: "type", Name: d.Name, Span: d.Span, Previous: prev}
	}
	id := types.DataID(t.Datas.Allocate(d))
	t.datas[d.Name] = id
	t.typeSpans[d.Name] = d.Span
	for _, c := range d.Cons {
		if other, ok := t.cons[c.Name]; ok {
			return id, &DuplicateError{Kind: "constructor", Name: c.Name, Span: c.Span, Previous: t.consSpan(other, c.Name)}
		}
		t.cons[c.Name] = id
	}
	return id, nil
}

func (t *Table) consSpan(data types.DataID, name string) source.Span {
	for _, c := range t.Data(data).Cons {
		if c.Name == name {
			return c.Span
		}
	}
	return source.Span{}
}

// AddAlias registers a type alias.
func (t *Table) AddAlias(a Alias) (types.AliasID, error) {
	if prev, ok := t.typeSpans[a.Name]; ok {
		return 0, &DuplicateError{Kind: "type", Name: a.Name, Span: a.Span, Previous: prev}
	}
	id := types.AliasID(t.Aliases.Allocate(a))
	t.aliases[a.Name] = id
	t.typeSpans[a.Name] = a.Span
	return id, nil
}

// AddEffect registers an effect declaration.
func (t *Table) AddEffect(e EffectDecl) (types.EffectDeclID, error) {
	if prev, ok := t.effects[e.Name]; ok {
		return 0, &DuplicateError{Kind: "effect", Name: e.Name, Span: e.Span, Previous: t.Effect(prev).Span}
	}
	id := types.EffectDeclID(t.Effects.Allocate(e))
	t.effects[e.Name] = id
	return id, nil
}

// AddClass registers a class.
func (t *Table) AddClass(c Class) (types.ClassID, error) {
	if prev, ok := t.classes[c.Name]; ok {
		return 0, &DuplicateError{Kind: "class", Name: c.Name, Span: c.Span, Previous: t.Class(prev).Span}
	}
	id := types.ClassID(t.Classes.Allocate(c))
	t.classes[c.Name] = id
	return id, nil
}

// AddMember registers a class member. Overlap between members is detected by the solver.
func (t *Table) AddMember(m Member) types.MemberID {
	return types.MemberID(t.Members.Allocate(m))
}

func (t *Table) Def(id types.DefID) *Def { return t.Defs.Get(uint32(id)) }
func (t *Table) Data(id types.DataID) *Data { return t.Datas.Get(uint32(id)) }
func (t *Table) Alias(id types.AliasID) *Alias { return t.Aliases.Get(uint32(id)) }
func (t *Table) Effect(id types.EffectDeclID) *EffectDecl { return t.Effects.Get(uint32(id)) }
func (t *Table) Class(id types.ClassID) *Class { return t.Classes.Get(uint32(id)) }
func (t *Table) Member(id types.MemberID) *Member { return t.Members.Get(uint32(id)) }

func (t *Table) LookupDef(name string) (types.DefID, bool) {
	id, ok := t.defs[name]
	return id, ok
}

func (t *Table) LookupData(name string) (types.DataID, bool) {
	id, ok := t.datas[name]
	return id, ok
}

// LookupCons returns the data type owning constructor name.
func (t *Table) LookupCons(name string) (types.DataID, bool) {
	id, ok := t.cons[name]
	return id, ok
}

func (t *Table) LookupAlias(name string) (types.AliasID, bool) {
	id, ok := t.aliases[name]
	return id, ok
}

func (t *Table) LookupEffect(name string) (types.EffectDeclID, bool) {
	id, ok := t.effects[name]
	return id, ok
}

func (t *Table) LookupClass(name string) (types.ClassID, bool) {
	id, ok := t.classes[name]
	return id, ok
}

// ConsPayload returns the payload type of constructor name of data.
func (t *Table) ConsPayload(data types.DataID, name string) (types.TyID, bool) {
	for _, c := range t.Data(data).Cons {
		if c.Name == name {
			return c.Payload, true
		}
	}
	return types.NoTyID, false
}

// ClassesWithField lists classes declaring field name, in declaration order.
func (t *Table) ClassesWithField(name string) []types.ClassID {
	var out []types.ClassID
	for i := uint32(1); i <= t.Classes.Len(); i++ {
		if _, ok := t.Classes.Get(i).Field(name); ok {
			out = append(out, types.ClassID(i))
		}
	}
	return out
}

// ClassesWithAssoc lists classes declaring associated type name.
func (t *Table) ClassesWithAssoc(name string) []types.ClassID {
	var out []types.ClassID
	for i := uint32(1); i <= t.Classes.Len(); i++ {
		if t.Classes.Get(i).HasAssoc(name) {
			out = append(out, types.ClassID(i))
		}
	}
	return out
}

// MembersOf lists members implementing class, in declaration order.
func (t *Table) MembersOf(class types.ClassID) []types.MemberID {
	var out []types.MemberID
	for i := uint32(1); i <= t.Members.Len(); i++ {
		if t.Members.Get(i).Class == class {
			out = append(out, types.MemberID(i))
		}
	}
	return out
}

// DataPayloads implements types.DataSource.
func (t *Table) DataPayloads(id types.DataID) []types.TyID {
	d := t.Data(id)
	if d == nil {
		return nil
	}
	out := make([]types.TyID, 0, len(d.Cons))
	for _, c := range d.Cons {
		out = append(out, c.Payload)
	}
	return out
}

// DataName implements types.Names.
func (t *Table) DataName(id types.DataID) string {
	if d := t.Data(id); d != nil {
		return d.Name
	}
	return "?data"
}

// ClassName implements types.Names.
func (t *Table) ClassName(id types.ClassID) string {
	if c := t.Class(id); c != nil {
		return c.Name
	}
	return "?class"
}

// EffectName implements types.Names.
func (t *Table) EffectName(id types.EffectDeclID) string {
	if e := t.Effect(id); e != nil {
		return e.Name
	}
	return "?effect"
}
