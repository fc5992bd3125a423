// Package ast holds the untyped syntax tree produced by the external parser.
// Trees arrive encoded as msgpack or JSON (see codec.go); the type engine never
// mutates them.
package ast

import (
	"fmt"

	"tao/internal/source"
)

// Span is a byte range in the module's source text. The file is implied by the
// module the node belongs to.
type Span struct {
	Start uint32 `json:"s"`
	End   uint32 `json:"e"`
}

// In attaches a file id.
func (s Span) In(file source.FileID) source.Span {
	return source.Span{File: file, Start: s.Start, End: s.End}
}

// Join covers both spans.
func (s Span) Join(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Ident is a name with its location.
type Ident struct {
	Name string `json:"n"`
	Span Span   `json:"sp"`
}

func (id Ident) String() string { return id.Name }

// LitKind enumerates literal forms.
type LitKind uint8

const (
	LitNat LitKind = iota
	LitInt
	LitReal
	LitBool
	LitChar
	LitStr
)

// Literal is a constant value. Only the field matching Kind is meaningful.
type Literal struct {
	Kind LitKind `json:"k"`
	Nat  uint64  `json:"nat,omitempty"`
	Int  int64   `json:"int,omitempty"`
	Real float64 `json:"real,omitempty"`
	Bool bool    `json:"bool,omitempty"`
	Char rune    `json:"char,omitempty"`
	Str  string  `json:"str,omitempty"`
}

func (l Literal) String() string {
	switch l.Kind {
	case LitNat:
		return fmt.Sprintf("%d", l.Nat)
	case LitInt:
		return fmt.Sprintf("%+d", l.Int)
	case LitReal:
		return fmt.Sprintf("%g", l.Real)
	case LitBool:
		if l.Bool {
			return "True"
		}
		return "False"
	case LitChar:
		return fmt.Sprintf("%q", l.Char)
	case LitStr:
		return fmt.Sprintf("%q", l.Str)
	}
	return "?"
}

// UnaryOp enumerates prefix operators.
type UnaryOp uint8

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryPropagate
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNot:
		return "!"
	case UnaryNeg:
		return "-"
	case UnaryPropagate:
		return "?"
	}
	return "?op"
}

// BinaryOp enumerates infix operators.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNotEq
	BinLess
	BinLessEq
	BinMore
	BinMoreEq
	BinAnd
	BinOr
	BinXor
	BinJoin
)

func (op BinaryOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinRem:
		return "%"
	case BinEq:
		return "="
	case BinNotEq:
		return "!="
	case BinLess:
		return "<"
	case BinLessEq:
		return "<="
	case BinMore:
		return ">"
	case BinMoreEq:
		return ">="
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	case BinXor:
		return "xor"
	case BinJoin:
		return "++"
	}
	return "?op"
}
