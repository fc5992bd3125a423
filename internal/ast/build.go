package ast

// Constructors for building trees in Go code (tests, tooling). Spans are left
// zero unless set by the caller.

func NatLit(n uint64) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: &Literal{Kind: LitNat, Nat: n}}
}

func IntLit(n int64) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: &Literal{Kind: LitInt, Int: n}}
}

func BoolLit(b bool) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: &Literal{Kind: LitBool, Bool: b}}
}

func StrLit(s string) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: &Literal{Kind: LitStr, Str: s}}
}

func Local(name string) *Expr {
	return &Expr{Kind: ExprLocal, Name: Ident{Name: name}}
}

func Tuple(items ...*Expr) *Expr {
	return &Expr{Kind: ExprTuple, Items: items}
}

func List(items ...*Expr) *Expr {
	return &Expr{Kind: ExprList, Items: items}
}

func Record(fields ...FieldExpr) *Expr {
	return &Expr{Kind: ExprRecord, Fields: fields}
}

func Field(name string, value *Expr) FieldExpr {
	return FieldExpr{Name: Ident{Name: name}, Value: value}
}

func Access(record *Expr, field string) *Expr {
	return &Expr{Kind: ExprAccess, Lhs: record, Name: Ident{Name: field}}
}

func Unary(op UnaryOp, a *Expr) *Expr {
	return &Expr{Kind: ExprUnary, UnOp: op, Lhs: a}
}

func Binary(op BinaryOp, a, b *Expr) *Expr {
	return &Expr{Kind: ExprBinary, BinOp: op, Lhs: a, Rhs: b}
}

func Apply(f *Expr, args ...*Expr) *Expr {
	for _, a := range args {
		f = &Expr{Kind: ExprApply, Lhs: f, Rhs: a}
	}
	return f
}

func Let(body *Expr, lets ...LetBinding) *Expr {
	return &Expr{Kind: ExprLet, Lets: lets, Lhs: body}
}

func If(cond, then, els *Expr) *Expr {
	return &Expr{Kind: ExprIf, Lhs: cond, Rhs: then, Else: els}
}

func Func(arms ...Arm) *Expr {
	return &Expr{Kind: ExprFunc, Arms: arms}
}

// LangDef refers to the definition marked `$[lang(name)]`.
func LangDef(name string) *Expr {
	return &Expr{Kind: ExprLangDef, Name: Ident{Name: name}}
}

func Match(scrutinees []*Expr, arms ...Arm) *Expr {
	return &Expr{Kind: ExprMatch, Items: scrutinees, Arms: arms}
}

func ArmOf(body *Expr, params ...*Binding) Arm {
	return Arm{Params: params, Body: body}
}

func Cons(name string, payload *Expr) *Expr {
	return &Expr{Kind: ExprCons, Name: Ident{Name: name}, Lhs: payload}
}

func ClassAccess(ty *Type, member string) *Expr {
	return &Expr{Kind: ExprClassAccess, Type: ty, Name: Ident{Name: member}}
}

func Intrinsic(name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprIntrinsic, Name: Ident{Name: name}, Items: args}
}

func Update(record *Expr, fields ...FieldExpr) *Expr {
	return &Expr{Kind: ExprUpdate, Lhs: record, Fields: fields}
}

func Block(stmts ...*Expr) *Expr {
	return &Expr{Kind: ExprBlock, Items: stmts}
}

func Handle(expr *Expr, effect string, generics []*Type, send *Binding, recv *Expr) *Expr {
	return &Expr{Kind: ExprHandle, Lhs: expr, Name: Ident{Name: effect}, Generics: generics, Send: send, Rhs: recv}
}

func Named(name string, args ...*Type) *Type {
	return &Type{Kind: TypeData, Name: Ident{Name: name}, Items: args}
}

func ListOf(elem *Type) *Type { return &Type{Kind: TypeList, Elem: elem} }

func TupleOf(items ...*Type) *Type { return &Type{Kind: TypeTuple, Items: items} }

func RecordOf(fields ...TypeField) *Type { return &Type{Kind: TypeRecord, Fields: fields} }

func FieldOf(name string, ty *Type) TypeField {
	return TypeField{Name: Ident{Name: name}, Type: ty}
}

func FuncOf(in, out *Type) *Type { return &Type{Kind: TypeFunc, Elem: in, Out: out} }

func AssocOf(base *Type, name string) *Type {
	return &Type{Kind: TypeAssoc, Elem: base, Name: Ident{Name: name}}
}

func EffectOf(name string, out *Type, args ...*Type) *Type {
	return &Type{Kind: TypeEffect, Name: Ident{Name: name}, Items: args, Out: out}
}

func Bind(p *Pat) *Binding { return &Binding{Pat: p} }

func BindName(name string) *Binding {
	return &Binding{Pat: &Pat{Kind: PatWildcard}, Name: &Ident{Name: name}}
}

func Wildcard() *Binding { return Bind(&Pat{Kind: PatWildcard}) }

func LitPat(l Literal) *Binding { return Bind(&Pat{Kind: PatLiteral, Lit: &l}) }

func TuplePat(items ...*Binding) *Binding { return Bind(&Pat{Kind: PatTuple, Items: items}) }

func Decons(name string, inner *Binding) *Binding {
	return Bind(&Pat{Kind: PatDeconstruct, Name: Ident{Name: name}, Inner: inner})
}

func Gens(names ...string) Generics {
	g := Generics{}
	for _, n := range names {
		g.Params = append(g.Params, GenericParam{Name: Ident{Name: n}})
	}
	return g
}
