package infer

import (
	"tao/internal/ast"
	"tao/internal/source"
	"tao/internal/types"
)

type constraintKind uint8

const (
	conAccess constraintKind = iota
	conUpdate
	conBinary
	conClassField
	conClassAssoc
	conImpl
	conEffectSendRecv
)

// constraint is a deferred obligation. Field use depends on kind:
//
//	access:     a = record, out = field type, name = field
//	update:     a = record, b = new value, name = field
//	binary:     a, b = operands, out = result
//	classField: a = self, out = field type, class (0 = pick by name), classVar
//	classAssoc: a = base, out = projection, class (0 = pick by name), name
//	impl:       a = type, class, oblSpan
//	sendRecv:   eff, a = sent, b = received
type constraint struct {
	kind     constraintKind
	seq      int
	span     source.Span
	a, b     TyVar
	out      TyVar
	name     string
	nameSpan source.Span
	op       ast.BinaryOp
	class    types.ClassID
	classVar ClassVar
	oblSpan  source.Span
	eff      EffectVar
}

func (in *Infer) post(c *constraint) {
	in.seq++
	c.seq = in.seq
	in.pending = append(in.pending, c)
}

// MakeAccess requires record to have field name of type out.
func (in *Infer) MakeAccess(record TyVar, name string, nameSpan source.Span, out TyVar) {
	in.post(&constraint{kind: conAccess, span: nameSpan, a: record, out: out, name: name, nameSpan: nameSpan})
}

// MakeUpdate requires record to have field name accepting value.
func (in *Infer) MakeUpdate(record TyVar, name string, nameSpan source.Span, value TyVar) {
	in.post(&constraint{kind: conUpdate, span: nameSpan, a: record, b: value, name: name, nameSpan: nameSpan})
}

// MakeBinary requires op to be defined for a and b, producing out.
func (in *Infer) MakeBinary(op ast.BinaryOp, a, b, out TyVar, span source.Span) {
	in.post(&constraint{kind: conBinary, span: span, a: a, b: b, out: out, op: op})
}

// MakeClassField requires self to implement the class declaring name, and
// fieldTy to be that field's type.
func (in *Infer) MakeClassField(self TyVar, name string, nameSpan source.Span, fieldTy TyVar, span source.Span) ClassVar {
	return in.MakeClassFieldKnown(self, name, nameSpan, 0, fieldTy, span)
}

// MakeClassFieldKnown is MakeClassField with the class already chosen. A zero
// class falls back to picking by name.
func (in *Infer) MakeClassFieldKnown(self TyVar, name string, nameSpan source.Span, class types.ClassID, fieldTy TyVar, span source.Span) ClassVar {
	cv := in.newClassVar(span, class)
	in.post(&constraint{kind: conClassField, span: span, a: self, out: fieldTy, name: name, nameSpan: nameSpan, class: class, classVar: cv})
	return cv
}

// MakeClassAssoc makes out the associated type name of base.
func (in *Infer) MakeClassAssoc(base TyVar, name string, out TyVar, span source.Span) {
	in.makeClassAssoc(base, 0, name, out, span)
}

func (in *Infer) makeClassAssoc(base TyVar, class types.ClassID, name string, out TyVar, span source.Span) {
	in.post(&constraint{kind: conClassAssoc, span: span, a: base, out: out, name: name, class: class})
}

// MakeImpl requires ty to implement class. useSpan is where the requirement
// arose, oblSpan is the obligation that demands it.
func (in *Infer) MakeImpl(ty TyVar, class types.ClassID, useSpan, oblSpan source.Span) {
	in.post(&constraint{kind: conImpl, span: useSpan, a: ty, class: class, oblSpan: oblSpan})
}

// MakeEffectSendRecv ties send and recv to the payload types of eff once it is known.
func (in *Infer) MakeEffectSendRecv(eff EffectVar, send, recv TyVar, span source.Span) {
	in.post(&constraint{kind: conEffectSendRecv, span: span, eff: eff, a: send, b: recv})
}

// ClassOf returns the class chosen for cv, 0 while undecided.
func (in *Infer) ClassOf(cv ClassVar) types.ClassID {
	if int(cv) >= len(in.classes) {
		return 0
	}
	return in.classes[cv].class
}

// Pending returns the number of unsolved deferred constraints.
func (in *Infer) Pending() int { return len(in.pending) }
