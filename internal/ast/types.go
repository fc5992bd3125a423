package ast

// TypeKind enumerates type syntax forms.
type TypeKind uint8

const (
	TypeError TypeKind = iota
	TypeUnknown
	TypeUniverse
	TypeList
	TypeTuple
	TypeRecord
	TypeFunc
	// TypeData is any named type: primitives, Self, generics, aliases and data types.
	TypeData
	TypeAssoc
	TypeEffect
)

// TypeField is `name: type` in a record type.
type TypeField struct {
	Name Ident `json:"name"`
	Type *Type `json:"type"`
}

// Type is a type annotation. Fields are shared between kinds:
//
//	List    Elem
//	Tuple   Items
//	Record  Fields
//	Func    Elem (input), Out
//	Data    Name, Items (arguments)
//	Assoc   Elem (base), Name (associated type)
//	Effect  Name, Items (arguments), Out (result)
type Type struct {
	Kind   TypeKind    `json:"kind"`
	Span   Span        `json:"sp"`
	Name   Ident       `json:"name,omitempty"`
	Elem   *Type       `json:"elem,omitempty"`
	Out    *Type       `json:"out,omitempty"`
	Items  []*Type     `json:"items,omitempty"`
	Fields []TypeField `json:"fields,omitempty"`
}
