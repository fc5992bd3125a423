// Package mono specializes a checked program: every reachable definition is
// copied once per distinct list of concrete type arguments, class accesses are
// resolved to member bodies and associated types to their definitions.
package mono

import (
	"tao/internal/ast"
	"tao/internal/hir"
	"tao/internal/source"
	"tao/internal/types"
)

// ExprKind enumerates concrete expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprLocal
	// ExprGlobal calls the specialization named by Key.
	ExprGlobal
	ExprTuple
	ExprList
	ExprRecord
	// ExprAccess reads Name after unwrapping Indirections single-constructor layers.
	ExprAccess
	ExprPropagate
	ExprBinary
	ExprMatch
	ExprFunc
	ExprApply
	ExprCons
	ExprIntrinsic
	ExprUpdate
	ExprBasin
	ExprSuspend
	ExprHandle
)

var exprKindNames = [...]string{
	ExprLiteral:   "literal",
	ExprLocal:     "local",
	ExprGlobal:    "global",
	ExprTuple:     "tuple",
	ExprList:      "list",
	ExprRecord:    "record",
	ExprAccess:    "access",
	ExprPropagate: "propagate",
	ExprBinary:    "binary",
	ExprMatch:     "match",
	ExprFunc:      "func",
	ExprApply:     "apply",
	ExprCons:      "cons",
	ExprIntrinsic: "intrinsic",
	ExprUpdate:    "update",
	ExprBasin:     "basin",
	ExprSuspend:   "suspend",
	ExprHandle:    "handle",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "unknown"
}

// Field is a named sub-expression of a record literal or update.
type Field struct {
	Name  string `json:"name"`
	Value *Expr  `json:"value"`
}

// Arm is one branch of a match.
type Arm struct {
	Binding *Binding `json:"binding"`
	Body    *Expr    `json:"body"`
}

// Expr is a concrete expression. Fields are shared between kinds:
//
//	Literal    Lit
//	Local      Name
//	Global     Key
//	Tuple      Items
//	List       Items, Tails
//	Record     Fields
//	Access     Items[0] (record), Name, Indirections
//	Propagate  Items[0], Eff
//	Binary     Op, Items[0], Items[1]
//	Match      Hidden, Items[0] (scrutinee), Arms
//	Func       Name (parameter), Items[0] (body)
//	Apply      Items[0] (function), Items[1] (argument)
//	Cons       Variant, Items[0] (payload)
//	Intrinsic  Intrinsic, Items
//	Update     Items[0] (record), Fields
//	Basin      Eff, Items[0]
//	Suspend    Eff, Items[0]
//	Handle     Eff, Items[0] (handled), Name (send parameter), Items[1] (reply)
type Expr struct {
	Kind         ExprKind      `json:"kind"`
	Span         source.Span   `json:"sp"`
	Ty           types.ConTyID `json:"ty"`
	Lit          ast.Literal   `json:"lit,omitempty"`
	Name         string        `json:"name,omitempty"`
	Key          Key           `json:"key,omitempty"`
	Op           ast.BinaryOp  `json:"op,omitempty"`
	Hidden       bool          `json:"hidden,omitempty"`
	Variant      string        `json:"variant,omitempty"`
	Intrinsic    hir.Intrinsic `json:"intrinsic,omitempty"`
	Indirections int           `json:"ind,omitempty"`
	Eff          types.ConTyID `json:"eff,omitempty"` // effect object type of the basin or handler
	Items        []*Expr       `json:"items,omitempty"`
	Tails        []*Expr       `json:"tails,omitempty"`
	Fields       []Field       `json:"fields,omitempty"`
	Arms         []Arm         `json:"arms,omitempty"`
}

// PatKind mirrors hir.PatKind.
type PatKind = hir.PatKind

// PatField is a named sub-binding of a record pattern.
type PatField struct {
	Name    string   `json:"name"`
	Binding *Binding `json:"binding"`
}

// Binding is a concrete pattern with an optional name.
type Binding struct {
	Span    source.Span   `json:"sp"`
	Ty      types.ConTyID `json:"ty"`
	Name    string        `json:"name,omitempty"`
	Kind    PatKind       `json:"kind"`
	Lit     ast.Literal   `json:"lit,omitempty"`
	N       uint64        `json:"n,omitempty"`
	Variant string        `json:"variant,omitempty"`
	Inner   *Binding      `json:"inner,omitempty"`
	Items   []*Binding    `json:"items,omitempty"`
	Fields  []PatField    `json:"fields,omitempty"`
	Tail    *Binding      `json:"tail,omitempty"`
}

// Def is one specialization.
type Def struct {
	Key  Key             `json:"key"`
	Name string          `json:"name"`
	Args []types.ConTyID `json:"args,omitempty"`
	Self types.ConTyID   `json:"self,omitempty"` // member fields only
	Body *Expr           `json:"body"`
}

// Program is the result of concretization.
type Program struct {
	Types *types.Interner
	Names types.Names
	Entry Key
	Defs  map[Key]*Def

	src *hir.Program
}

// Def returns the specialization for k.
func (p *Program) Def(k Key) (*Def, bool) {
	d, ok := p.Defs[k]
	return d, ok
}
