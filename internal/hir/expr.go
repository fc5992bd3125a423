// Package hir is the typed intermediate tree produced by lowering. Every node
// carries the solver var it was checked with and, after Reify, the store type
// that var resolved to.
package hir

import (
	"tao/internal/ast"
	"tao/internal/infer"
	"tao/internal/source"
	"tao/internal/types"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	// ExprError stands in for an expression that failed to lower.
	ExprError ExprKind = iota
	ExprLiteral
	// ExprLocal refers to a binding in scope.
	ExprLocal
	// ExprGlobal refers to a definition instantiated with generic arguments.
	ExprGlobal
	ExprTuple
	// ExprList is a list literal with optional spliced tails.
	ExprList
	ExprRecord
	ExprAccess
	// ExprUnary is what remains of prefix operators after desugaring: `?`.
	ExprUnary
	// ExprBinary is an operator resolved by the operator table.
	ExprBinary
	// ExprMatch tests a scrutinee against arms. Hidden matches come from
	// desugaring let, if and blocks rather than from a written match.
	ExprMatch
	ExprFunc
	ExprApply
	ExprCons
	// ExprClassAccess is `Self::field` with the class picked by the solver.
	ExprClassAccess
	ExprIntrinsic
	ExprUpdate
	// ExprBasin delimits the effects raised by its body.
	ExprBasin
	ExprSuspend
	ExprHandle
)

func (k ExprKind) String() string {
	switch k {
	case ExprError:
		return "Error"
	case ExprLiteral:
		return "Literal"
	case ExprLocal:
		return "Local"
	case ExprGlobal:
		return "Global"
	case ExprTuple:
		return "Tuple"
	case ExprList:
		return "List"
	case ExprRecord:
		return "Record"
	case ExprAccess:
		return "Access"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprMatch:
		return "Match"
	case ExprFunc:
		return "Func"
	case ExprApply:
		return "Apply"
	case ExprCons:
		return "Cons"
	case ExprClassAccess:
		return "ClassAccess"
	case ExprIntrinsic:
		return "Intrinsic"
	case ExprUpdate:
		return "Update"
	case ExprBasin:
		return "Basin"
	case ExprSuspend:
		return "Suspend"
	case ExprHandle:
		return "Handle"
	default:
		return "Unknown"
	}
}

// Expr is an HIR expression.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Var  infer.TyVar
	Ty   types.TyID // filled by Reify
	Data ExprData
}

// ExprData is the kind-specific payload.
type ExprData interface {
	exprData()
}

type LiteralData struct {
	Lit ast.Literal
}

func (LiteralData) exprData() {}

type LocalData struct {
	Name string
}

func (LocalData) exprData() {}

// GlobalData refers to a definition. GenVars are the solver vars chosen for
// its generic parameters; Gens holds them after Reify.
type GlobalData struct {
	Def     types.DefID
	GenVars []infer.TyVar
	Gens    []types.TyID
}

func (GlobalData) exprData() {}

type TupleData struct {
	Items []*Expr
}

func (TupleData) exprData() {}

// ListData is `[a, b, ..tail]`. Every tail is itself a list.
type ListData struct {
	Items []*Expr
	Tails []*Expr
}

func (ListData) exprData() {}

// FieldInit is `name: value` in a record literal or update.
type FieldInit struct {
	Name  string
	Span  source.Span
	Value *Expr
}

type RecordData struct {
	Fields []FieldInit
}

func (RecordData) exprData() {}

type AccessData struct {
	Record    *Expr
	Field     string
	FieldSpan source.Span
}

func (AccessData) exprData() {}

// UnaryData carries the effect a `?` propagates into.
type UnaryData struct {
	Op      ast.UnaryOp
	Operand *Expr
	EffVar  infer.EffectVar
	Eff     types.EffectID
}

func (UnaryData) exprData() {}

type BinaryData struct {
	Op  ast.BinaryOp
	Lhs *Expr
	Rhs *Expr
}

func (BinaryData) exprData() {}

// Arm is one branch of a match.
type Arm struct {
	Binding *Binding
	Body    *Expr
}

type MatchData struct {
	Hidden    bool
	Scrutinee *Expr
	Arms      []Arm
}

func (MatchData) exprData() {}

// FuncData is a single-parameter function. Param names a synthetic local.
type FuncData struct {
	Param string
	Body  *Expr
}

func (FuncData) exprData() {}

type ApplyData struct {
	Func *Expr
	Arg  *Expr
}

func (ApplyData) exprData() {}

type ConsData struct {
	Data    types.DataID
	Variant string
	GenVars []infer.TyVar
	Gens    []types.TyID
	Inner   *Expr
}

func (ConsData) exprData() {}

// ClassAccessData is resolved once the solver has picked the class.
type ClassAccessData struct {
	SelfVar  infer.TyVar
	Self     types.TyID
	ClassVar infer.ClassVar
	Class    types.ClassID
	Field    string
}

func (ClassAccessData) exprData() {}

type IntrinsicData struct {
	Intrinsic Intrinsic
	Args      []*Expr
}

func (IntrinsicData) exprData() {}

type UpdateData struct {
	Record *Expr
	Fields []FieldInit
}

func (UpdateData) exprData() {}

type BasinData struct {
	EffVar infer.EffectVar
	Eff    types.EffectID
	Body   *Expr
}

func (BasinData) exprData() {}

type SuspendData struct {
	EffVar infer.EffectVar
	Eff    types.EffectID
	Inner  *Expr
}

func (SuspendData) exprData() {}

// HandleData runs Expr, answering every suspension of Eff: the sent value is
// bound to SendParam and Recv computes the reply.
type HandleData struct {
	Expr      *Expr
	EffVar    infer.EffectVar
	Eff       types.EffectID
	SendParam string
	Recv      *Expr
}

func (HandleData) exprData() {}
