package ast

// Obligation is a class requirement written after a generic parameter.
type Obligation struct {
	Class Ident `json:"class"`
}

// GenericParam is `Name: Class + Class`.
type GenericParam struct {
	Name        Ident        `json:"name"`
	Obligations []Obligation `json:"obligations,omitempty"`
}

// Generics is a generic parameter list.
type Generics struct {
	Span   Span           `json:"sp"`
	Params []GenericParam `json:"params,omitempty"`
}

// Attr is `$[name]` or `$[name(arg, ...)]` attached to an item.
type Attr struct {
	Name Ident   `json:"name"`
	Args []Ident `json:"args,omitempty"`
}

// FindAttr returns the first attribute called name.
func FindAttr(attrs []Attr, name string) (Attr, bool) {
	for _, a := range attrs {
		if a.Name.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// LangName returns x for a `$[lang(x)]` attribute.
func LangName(attrs []Attr) (string, bool) {
	a, ok := FindAttr(attrs, "lang")
	if !ok || len(a.Args) != 1 {
		return "", false
	}
	return a.Args[0].Name, true
}

// Def is `def name A B : hint = body`.
type Def struct {
	Name     Ident    `json:"name"`
	Attrs    []Attr   `json:"attrs,omitempty"`
	Generics Generics `json:"generics"`
	Hint     *Type    `json:"hint,omitempty"`
	Body     *Expr    `json:"body"`
	Span     Span     `json:"sp"`
}

// Variant is one data constructor.
type Variant struct {
	Name    Ident `json:"name"`
	Payload *Type `json:"payload"`
}

// Data is `data Name A = | V T | ...`.
type Data struct {
	Name     Ident     `json:"name"`
	Attrs    []Attr    `json:"attrs,omitempty"`
	Generics Generics  `json:"generics"`
	Variants []Variant `json:"variants"`
	Span     Span      `json:"sp"`
}

// Alias is `type Name A = T`.
type Alias struct {
	Name     Ident    `json:"name"`
	Generics Generics `json:"generics"`
	Type     *Type    `json:"type"`
	Span     Span     `json:"sp"`
}

// Effect is `effect Name A = Send => Recv`.
type Effect struct {
	Name     Ident    `json:"name"`
	Generics Generics `json:"generics"`
	Send     *Type    `json:"send"`
	Recv     *Type    `json:"recv"`
	Span     Span     `json:"sp"`
}

// ClassField is `val name : Type` inside a class.
type ClassField struct {
	Name Ident `json:"name"`
	Type *Type `json:"type"`
}

// Class is `class Name = ...`. Field types may mention Self.
type Class struct {
	Name   Ident        `json:"name"`
	Attrs  []Attr       `json:"attrs,omitempty"`
	Fields []ClassField `json:"fields,omitempty"`
	Assoc  []Ident      `json:"assoc,omitempty"`
	Span   Span         `json:"sp"`
}

// MemberField is `val name = body` inside a member.
type MemberField struct {
	Name Ident `json:"name"`
	Body *Expr `json:"body"`
}

// MemberAssoc is `type name = T` inside a member.
type MemberAssoc struct {
	Name Ident `json:"name"`
	Type *Type `json:"type"`
}

// Member is `member A = Type of Class = ...`.
type Member struct {
	Generics Generics      `json:"generics"`
	Self     *Type         `json:"self"`
	Class    Ident         `json:"class"`
	Fields   []MemberField `json:"fields,omitempty"`
	Assoc    []MemberAssoc `json:"assoc,omitempty"`
	Span     Span          `json:"sp"`
}

// Source is the text a module was parsed from, embedded for diagnostics.
type Source struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Module is one parsed input.
type Module struct {
	Source  Source   `json:"source"`
	Defs    []Def    `json:"defs,omitempty"`
	Datas   []Data   `json:"datas,omitempty"`
	Aliases []Alias  `json:"aliases,omitempty"`
	Effects []Effect `json:"effects,omitempty"`
	Classes []Class  `json:"classes,omitempty"`
	Members []Member `json:"members,omitempty"`
}
