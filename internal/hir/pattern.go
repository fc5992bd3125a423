package hir

import (
	"tao/internal/ast"
	"tao/internal/infer"
	"tao/internal/source"
	"tao/internal/types"
)

// PatKind enumerates HIR pattern kinds.
type PatKind uint8

const (
	PatError PatKind = iota
	PatWildcard
	PatLiteral
	PatSingle
	// PatAdd matches a natural number of at least N, binding the rest.
	PatAdd
	PatTuple
	PatRecord
	PatListExact
	// PatListFront matches a list prefix; Tail, when set, binds the remainder.
	PatListFront
	PatDecons
)

func (k PatKind) String() string {
	switch k {
	case PatError:
		return "Error"
	case PatWildcard:
		return "Wildcard"
	case PatLiteral:
		return "Literal"
	case PatSingle:
		return "Single"
	case PatAdd:
		return "Add"
	case PatTuple:
		return "Tuple"
	case PatRecord:
		return "Record"
	case PatListExact:
		return "ListExact"
	case PatListFront:
		return "ListFront"
	case PatDecons:
		return "Decons"
	default:
		return "Unknown"
	}
}

// PatField is `name: binding` in a record pattern.
type PatField struct {
	Name    string
	Binding *Binding
}

// Pat is a pattern. Which fields are set depends on Kind.
type Pat struct {
	Kind    PatKind
	Lit     ast.Literal
	N       uint64 // PatAdd
	Inner   *Binding
	Items   []*Binding
	Fields  []PatField
	Tail    *Binding
	Data    types.DataID
	Variant string
	GenVars []infer.TyVar
	Gens    []types.TyID
}

// Binding is a pattern with an optional name for the whole value.
type Binding struct {
	Span source.Span
	Var  infer.TyVar
	Ty   types.TyID
	Pat  Pat
	Name string
}

// Wildcard is the `_` binding of var v.
func Wildcard(span source.Span, v infer.TyVar) *Binding {
	return &Binding{Span: span, Var: v, Pat: Pat{Kind: PatWildcard}}
}

// Named binds the whole value to name without inspecting it.
func Named(span source.Span, v infer.TyVar, name string) *Binding {
	return &Binding{Span: span, Var: v, Pat: Pat{Kind: PatWildcard}, Name: name}
}

// Names collects the names a binding introduces, in source order.
func (b *Binding) Names() []string {
	var out []string
	WalkBinding(b, func(x *Binding) {
		if x.Name != "" {
			out = append(out, x.Name)
		}
	})
	return out
}
