package infer

import (
	"fmt"
	"slices"
	"strings"

	"tao/internal/source"
	"tao/internal/types"
)

// TyVar is a solver variable local to one Infer session. 0 is never valid.
type TyVar uint32

// EffectVar is an effect variable local to one Infer session.
type EffectVar uint32

// ClassVar stands for a class picked by a class-field constraint.
type ClassVar uint32

// InfoKind enumerates what is known about a TyVar.
type InfoKind uint8

const (
	InfoUnknown InfoKind = iota
	InfoRef
	InfoError
	InfoPrim
	InfoList
	InfoTuple
	InfoRecord
	InfoFunc
	InfoData
	InfoGen
	InfoSelf
	InfoAssoc
	InfoEffect
)

func (k InfoKind) String() string {
	switch k {
	case InfoUnknown:
		return "unknown"
	case InfoRef:
		return "ref"
	case InfoError:
		return "error"
	case InfoPrim:
		return "prim"
	case InfoList:
		return "list"
	case InfoTuple:
		return "tuple"
	case InfoRecord:
		return "record"
	case InfoFunc:
		return "func"
	case InfoData:
		return "data"
	case InfoGen:
		return "gen"
	case InfoSelf:
		return "self"
	case InfoAssoc:
		return "assoc"
	case InfoEffect:
		return "effect"
	}
	return fmt.Sprintf("InfoKind(%d)", k)
}

// Field is one entry of a record var.
type Field struct {
	Name string
	Var  TyVar
}

// TyInfo is the solver's knowledge about a variable.
type TyInfo struct {
	Kind InfoKind
	// Origin is where an unknown came from, e.g. the generic parameter it instantiates.
	Origin    source.Span
	HasOrigin bool
	Ref       TyVar
	Reason    types.ErrorReason
	Prim      types.Prim
	Elem      TyVar // list element, effect result, projection base
	In        TyVar
	Out       TyVar
	Items     []TyVar // tuple elements, data arguments
	Fields    []Field // sorted by name
	Data      types.DataID
	Scope     types.GenScopeID
	Index     int
	Class     types.ClassID
	Name      string
	Effect    EffectVar
}

func Unknown() TyInfo { return TyInfo{Kind: InfoUnknown} }

func UnknownFrom(origin source.Span) TyInfo {
	return TyInfo{Kind: InfoUnknown, Origin: origin, HasOrigin: true}
}

func Ref(v TyVar) TyInfo { return TyInfo{Kind: InfoRef, Ref: v} }

func Error(r types.ErrorReason) TyInfo { return TyInfo{Kind: InfoError, Reason: r} }

func Prim(p types.Prim) TyInfo { return TyInfo{Kind: InfoPrim, Prim: p} }

func List(elem TyVar) TyInfo { return TyInfo{Kind: InfoList, Elem: elem} }

func Tuple(items ...TyVar) TyInfo { return TyInfo{Kind: InfoTuple, Items: slices.Clone(items)} }

// Record sorts a copy of fields by name.
func Record(fields []Field) TyInfo {
	fs := slices.Clone(fields)
	slices.SortStableFunc(fs, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
	return TyInfo{Kind: InfoRecord, Fields: fs}
}

func Func(in, out TyVar) TyInfo { return TyInfo{Kind: InfoFunc, In: in, Out: out} }

func Data(id types.DataID, args []TyVar) TyInfo {
	return TyInfo{Kind: InfoData, Data: id, Items: slices.Clone(args)}
}

func Gen(scope types.GenScopeID, index int) TyInfo {
	return TyInfo{Kind: InfoGen, Scope: scope, Index: index}
}

func Self() TyInfo { return TyInfo{Kind: InfoSelf} }

func Assoc(base TyVar, class types.ClassID, name string) TyInfo {
	return TyInfo{Kind: InfoAssoc, Elem: base, Class: class, Name: name}
}

func EffectObj(eff EffectVar, out TyVar) TyInfo {
	return TyInfo{Kind: InfoEffect, Effect: eff, Elem: out}
}

func (t TyInfo) field(name string) (TyVar, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Var, true
		}
	}
	return 0, false
}

// EffectKind enumerates what is known about an EffectVar.
type EffectKind uint8

const (
	EffUnknown EffectKind = iota
	EffRef
	EffKnown
	EffError
)

// EffectInfo is the solver's knowledge about an effect variable.
type EffectInfo struct {
	Kind EffectKind
	Ref  EffectVar
	Decl types.EffectDeclID
	Args []TyVar
}

func KnownEffect(decl types.EffectDeclID, args []TyVar) EffectInfo {
	return EffectInfo{Kind: EffKnown, Decl: decl, Args: slices.Clone(args)}
}

// EqInfo explains why a flow was required; it is shown when the flow fails.
type EqInfo struct {
	Span source.Span
	Msg  string
}

// Because builds an EqInfo with a reason.
func Because(span source.Span, msg string) EqInfo { return EqInfo{Span: span, Msg: msg} }

// At builds an EqInfo without a reason.
func At(span source.Span) EqInfo { return EqInfo{Span: span} }
