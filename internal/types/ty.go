package types

import (
	"fmt"
	"slices"
	"strings"
)

// Kind enumerates the shapes of a generic type node.
type Kind uint8

const (
	KindError Kind = iota
	KindPrim
	KindList
	KindTuple
	KindRecord
	KindFunc
	KindData
	KindGen
	KindSelf
	KindAssoc
	KindEffect
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindPrim:
		return "prim"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindRecord:
		return "record"
	case KindFunc:
		return "func"
	case KindData:
		return "data"
	case KindGen:
		return "gen"
	case KindSelf:
		return "self"
	case KindAssoc:
		return "assoc"
	case KindEffect:
		return "effect"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ErrorReason says why a type was replaced by an error marker.
type ErrorReason uint8

const (
	// ReasonUnknown covers errors already reported elsewhere.
	ReasonUnknown ErrorReason = iota
	// ReasonRecursive marks a type with no finite representation.
	ReasonRecursive
	// ReasonInvalid marks syntactically valid but meaningless types.
	ReasonInvalid
)

func (r ErrorReason) String() string {
	switch r {
	case ReasonRecursive:
		return "recursive"
	case ReasonInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Prim enumerates primitive types.
type Prim uint8

const (
	PrimNat Prim = iota
	PrimInt
	PrimReal
	PrimBool
	PrimChar
	PrimUniverse
)

func (p Prim) String() string {
	switch p {
	case PrimNat:
		return "Nat"
	case PrimInt:
		return "Int"
	case PrimReal:
		return "Real"
	case PrimBool:
		return "Bool"
	case PrimChar:
		return "Char"
	case PrimUniverse:
		return "@"
	default:
		return fmt.Sprintf("Prim(%d)", p)
	}
}

// Field is one record entry.
type Field struct {
	Name string
	Ty   TyID
}

// Ty is a generic type node. Which fields are meaningful depends on Kind.
type Ty struct {
	Kind   Kind
	Reason ErrorReason // KindError
	Prim   Prim        // KindPrim
	Elem   TyID        // list element, effect result, projection base
	In     TyID        // function input
	Out    TyID        // function output
	Items  []TyID      // tuple elements, data arguments
	Fields []Field     // sorted by name
	Data   DataID
	Class  ClassID // projection class
	Name   string  // projection name
	Scope  GenScopeID
	Index  int // generic index within Scope
	Effect EffectID
}

func MakeError(r ErrorReason) Ty { return Ty{Kind: KindError, Reason: r} }

func MakePrim(p Prim) Ty { return Ty{Kind: KindPrim, Prim: p} }

func MakeList(elem TyID) Ty { return Ty{Kind: KindList, Elem: elem} }

func MakeTuple(items ...TyID) Ty {
	return Ty{Kind: KindTuple, Items: slices.Clone(items)}
}

// MakeRecord sorts a copy of fields by name. Callers must reject duplicate names.
func MakeRecord(fields []Field) Ty {
	fs := slices.Clone(fields)
	slices.SortFunc(fs, func(a, b Field) int { return strings.Compare(a.Name, b.Name) })
	return Ty{Kind: KindRecord, Fields: fs}
}

func MakeFunc(in, out TyID) Ty { return Ty{Kind: KindFunc, In: in, Out: out} }

func MakeData(id DataID, args []TyID) Ty {
	return Ty{Kind: KindData, Data: id, Items: slices.Clone(args)}
}

func MakeGen(scope GenScopeID, index int) Ty {
	return Ty{Kind: KindGen, Scope: scope, Index: index}
}

func MakeSelf() Ty { return Ty{Kind: KindSelf} }

func MakeAssoc(base TyID, class ClassID, name string) Ty {
	return Ty{Kind: KindAssoc, Elem: base, Class: class, Name: name}
}

func MakeEffect(eff EffectID, out TyID) Ty {
	return Ty{Kind: KindEffect, Effect: eff, Elem: out}
}

// FieldTy finds a record field by name.
func (t Ty) FieldTy(name string) (TyID, bool) {
	i, ok := slices.BinarySearchFunc(t.Fields, name, func(f Field, n string) int {
		return strings.Compare(f.Name, n)
	})
	if !ok {
		return NoTyID, false
	}
	return t.Fields[i].Ty, true
}

// Effect is an effect descriptor: unknown, or a declared effect applied to arguments.
type Effect struct {
	Known bool
	Decl  EffectDeclID
	Args  []TyID
}

func UnknownEffect() Effect { return Effect{} }

func KnownEffect(decl EffectDeclID, args []TyID) Effect {
	return Effect{Known: true, Decl: decl, Args: slices.Clone(args)}
}
