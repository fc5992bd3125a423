package ast

import "fmt"

// ExprKind enumerates expression forms.
type ExprKind uint8

const (
	ExprError ExprKind = iota
	ExprLiteral
	ExprLocal
	ExprTuple
	ExprList
	ExprRecord
	ExprAccess
	ExprUnary
	ExprBinary
	ExprLet
	ExprMatch
	ExprIf
	ExprFunc
	ExprApply
	ExprCons
	ExprClassAccess
	ExprIntrinsic
	ExprUpdate
	ExprBlock
	ExprHandle
	ExprLangDef
)

func (k ExprKind) String() string {
	switch k {
	case ExprError:
		return "error"
	case ExprLiteral:
		return "literal"
	case ExprLocal:
		return "local"
	case ExprTuple:
		return "tuple"
	case ExprList:
		return "list"
	case ExprRecord:
		return "record"
	case ExprAccess:
		return "access"
	case ExprUnary:
		return "unary"
	case ExprBinary:
		return "binary"
	case ExprLet:
		return "let"
	case ExprMatch:
		return "match"
	case ExprIf:
		return "if"
	case ExprFunc:
		return "func"
	case ExprApply:
		return "apply"
	case ExprCons:
		return "cons"
	case ExprClassAccess:
		return "class_access"
	case ExprIntrinsic:
		return "intrinsic"
	case ExprUpdate:
		return "update"
	case ExprBlock:
		return "block"
	case ExprHandle:
		return "handle"
	case ExprLangDef:
		return "lang_def"
	default:
		return fmt.Sprintf("ExprKind(%d)", k)
	}
}

// FieldExpr is `name = value` in a record literal or update.
type FieldExpr struct {
	Name  Ident `json:"name"`
	Value *Expr `json:"value"`
}

// LetBinding is one `binding = value` of a let.
type LetBinding struct {
	Binding *Binding `json:"binding"`
	Value   *Expr    `json:"value"`
}

// Arm is one alternative of a function literal or match.
type Arm struct {
	Params []*Binding `json:"params"`
	Span   Span       `json:"sp"` // covers Params
	Body   *Expr      `json:"body"`
}

// Expr is an expression node. Fields are shared between kinds:
//
//	Literal      Lit
//	Local        Name
//	Tuple        Items
//	List         Items, Tails
//	Record       Fields
//	Access       Lhs, Name (field)
//	Unary        UnOp, Lhs
//	Binary       BinOp, Lhs, Rhs
//	Let          Lets, Lhs (body)
//	Match        Items (scrutinees), ItemsSpan, Arms
//	If           Lhs (condition), Rhs (then), Else
//	Func         Arms
//	Apply        Lhs (function), Rhs (argument)
//	Cons         Name (constructor), Lhs (payload)
//	ClassAccess  Type, Name (member)
//	Intrinsic    Name, Items (arguments)
//	Update       Lhs (record), Fields
//	Block        Items (statements, last is the result)
//	Handle       Lhs (handled), Name (effect), Generics, Send, Rhs (recv)
//	LangDef      Name (`io_unit` or `io_bind`)
type Expr struct {
	Kind      ExprKind     `json:"kind"`
	Span      Span         `json:"sp"`
	Lit       *Literal     `json:"lit,omitempty"`
	Name      Ident        `json:"name,omitempty"`
	UnOp      UnaryOp      `json:"unop,omitempty"`
	UnOpSpan  Span         `json:"unop_sp,omitempty"`
	BinOp     BinaryOp     `json:"binop,omitempty"`
	Lhs       *Expr        `json:"lhs,omitempty"`
	Rhs       *Expr        `json:"rhs,omitempty"`
	Else      *Expr        `json:"else,omitempty"`
	Items     []*Expr      `json:"items,omitempty"`
	ItemsSpan Span         `json:"items_sp,omitempty"`
	Tails     []*Expr      `json:"tails,omitempty"`
	Fields    []FieldExpr  `json:"fields,omitempty"`
	Lets      []LetBinding `json:"lets,omitempty"`
	Arms      []Arm        `json:"arms,omitempty"`
	Type      *Type        `json:"type,omitempty"`
	Generics  []*Type      `json:"generics,omitempty"`
	Send      *Binding     `json:"send,omitempty"`
}
