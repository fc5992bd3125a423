package ast

// PatKind enumerates pattern forms.
type PatKind uint8

const (
	PatError PatKind = iota
	PatWildcard
	PatLiteral
	// PatSingle is a parenthesised binding.
	PatSingle
	// PatAdd is `binding + n`.
	PatAdd
	PatTuple
	PatRecord
	PatListExact
	PatListFront
	PatDeconstruct
)

// PatField is `name: binding` in a record pattern.
type PatField struct {
	Name    Ident    `json:"name"`
	Binding *Binding `json:"binding"`
}

// Pat is a pattern. Fields are shared between kinds:
//
//	Literal      Lit
//	Single       Inner
//	Add          BinOp, Inner (lhs), Lit (rhs), LitSpan
//	Tuple        Items
//	Record       Fields
//	ListExact    Items
//	ListFront    Items, Inner (tail, optional)
//	Deconstruct  Name (constructor), Inner
type Pat struct {
	Kind    PatKind    `json:"kind"`
	Span    Span       `json:"sp"`
	Lit     *Literal   `json:"lit,omitempty"`
	LitSpan Span       `json:"lit_sp,omitempty"`
	BinOp   BinaryOp   `json:"binop,omitempty"`
	Name    Ident      `json:"name,omitempty"`
	Inner   *Binding   `json:"inner,omitempty"`
	Items   []*Binding `json:"items,omitempty"`
	Fields  []PatField `json:"fields,omitempty"`
}

// Binding is a pattern with an optional `name @` and an optional type hint.
type Binding struct {
	Span Span   `json:"sp"`
	Pat  *Pat   `json:"pat"`
	Name *Ident `json:"name,omitempty"`
	Type *Type  `json:"type,omitempty"`
}
