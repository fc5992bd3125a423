package infer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hashicorp/go-set/v3"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/source"
	"tao/internal/symbols"
	"tao/internal/types"
)

// Solve runs deferred constraints to a fixed point, defaulting half-known
// operators when stuck, and reports whatever is still unsolved.
func (in *Infer) Solve() {
	for {
		in.drain()
		if len(in.pending) == 0 || !in.defaultOne() {
			break
		}
	}
	in.reportLeftovers()
	in.solved = true
}

func (in *Infer) drain() {
	for {
		progress := false
		queue := in.pending
		in.pending = nil
		var kept []*constraint
		for _, c := range queue {
			if in.try(c) {
				progress = true
			} else {
				kept = append(kept, c)
			}
		}
		// try may have posted new constraints
		in.pending = append(kept, in.pending...)
		slices.SortFunc(in.pending, func(a, b *constraint) int { return cmp.Compare(a.seq, b.seq) })
		if !progress {
			return
		}
	}
}

func (in *Infer) try(c *constraint) bool {
	switch c.kind {
	case conAccess:
		return in.tryAccess(c)
	case conUpdate:
		return in.tryUpdate(c)
	case conBinary:
		return in.tryBinary(c)
	case conClassField:
		return in.tryClassField(c)
	case conClassAssoc:
		return in.tryClassAssoc(c)
	case conImpl:
		return in.tryImpl(c)
	case conEffectSendRecv:
		return in.trySendRecv(c)
	}
	panic(fmt.Sprintf("infer: unknown constraint kind %d", c.kind))
}

func (in *Infer) kindOf(v TyVar) InfoKind { return in.vars[in.follow(v)].info.Kind }

// dataGens substitutes the arguments of a data type for its generic parameters.
func (in *Infer) dataGens(d *symbols.Data, args []TyVar) func(types.GenScopeID, int) (TyVar, bool) {
	return func(scope types.GenScopeID, idx int) (TyVar, bool) {
		if scope == d.GenScope && idx < len(args) {
			return args[idx], true
		}
		return 0, false
	}
}

func (in *Infer) tryAccess(c *constraint) bool {
	seen := set.New[types.DataID](0)
	cur := c.a
	for {
		root := in.follow(cur)
		info := in.vars[root].info
		switch info.Kind {
		case InfoUnknown:
			return false
		case InfoError:
			in.poison(c.out)
			return true
		case InfoRecord:
			if f, ok := info.field(c.name); ok {
				in.flow(f, c.out, At(c.nameSpan))
				return true
			}
		case InfoData:
			d := in.env.Table.Data(info.Data)
			if d != nil && len(d.Cons) == 1 && !seen.Contains(info.Data) {
				seen.Insert(info.Data)
				cur = in.Instantiate(d.Cons[0].Payload, c.span, in.dataGens(d, info.Items), 0)
				continue
			}
		}
		diag.ReportError(in.env.Reporter, diag.SemaNoSuchField, c.nameSpan,
			fmt.Sprintf("no field `%s` on type `%s`", c.name, in.Display(c.a))).
			WithNote(in.vars[c.a].span, "the value is produced here").
			Emit()
		in.poison(c.out)
		return true
	}
}

func (in *Infer) tryUpdate(c *constraint) bool {
	info := in.vars[in.follow(c.a)].info
	switch info.Kind {
	case InfoUnknown:
		return false
	case InfoError:
		return true
	case InfoRecord:
		if f, ok := info.field(c.name); ok {
			in.flow(c.b, f, Because(c.nameSpan, "an updated field must keep its type"))
			return true
		}
	}
	diag.ReportError(in.env.Reporter, diag.SemaNoSuchField, c.nameSpan,
		fmt.Sprintf("cannot update field `%s` of type `%s`", c.name, in.Display(c.a))).
		WithNote(in.vars[c.a].span, "the updated value is produced here").
		Emit()
	return true
}

func (in *Infer) tryBinary(c *constraint) bool {
	a, b := in.vars[in.follow(c.a)].info, in.vars[in.follow(c.b)].info
	if a.Kind == InfoError || b.Kind == InfoError {
		in.poison(c.out)
		return true
	}
	if c.op == ast.BinJoin && (a.Kind == InfoList || b.Kind == InfoList) {
		why := Because(c.span, "only lists of the same type can be joined")
		in.flow(c.a, c.b, why)
		in.flow(c.a, c.out, why)
		return true
	}
	if a.Kind == InfoUnknown || b.Kind == InfoUnknown {
		return false
	}
	if a.Kind == InfoPrim && b.Kind == InfoPrim && a.Prim == b.Prim {
		if p, ok := binaryResult(c.op, a.Prim); ok {
			in.flow(in.Insert(c.span, Prim(p)), c.out, At(c.span))
			return true
		}
	}
	diag.ReportError(in.env.Reporter, diag.SemaNoBinaryOp, c.span,
		fmt.Sprintf("operator `%s` is not defined for `%s` and `%s`", c.op, in.Display(c.a), in.Display(c.b))).
		WithNote(in.vars[c.a].span, "left operand").
		WithNote(in.vars[c.b].span, "right operand").
		Emit()
	in.poison(c.out)
	return true
}

func (in *Infer) className(id types.ClassID) string { return in.env.Table.ClassName(id) }

func (in *Infer) tryClassField(c *constraint) bool {
	class := c.class
	if class == 0 {
		cands := in.env.Table.ClassesWithField(c.name)
		switch len(cands) {
		case 0:
			diag.ReportError(in.env.Reporter, diag.SemaNoSuchClassField, c.nameSpan,
				fmt.Sprintf("no class declares a field called `%s`", c.name)).Emit()
			in.poison(c.out)
			return true
		case 1:
			class = cands[0]
		default:
			b := diag.ReportError(in.env.Reporter, diag.SemaAmbiguousClassField, c.nameSpan,
				fmt.Sprintf("field `%s` is declared by more than one class", c.name))
			for _, id := range cands {
				b.WithNote(in.env.Table.Class(id).Span, fmt.Sprintf("declared by `%s`", in.className(id)))
			}
			b.Emit()
			in.poison(c.out)
			return true
		}
	}
	field, ok := in.env.Table.Class(class).Field(c.name)
	if !ok {
		diag.ReportError(in.env.Reporter, diag.SemaNoSuchClassField, c.nameSpan,
			fmt.Sprintf("class `%s` has no field `%s`", in.className(class), c.name)).
			WithNote(in.env.Table.Class(class).Span, "class declared here").
			Emit()
		in.poison(c.out)
		return true
	}
	in.classes[c.classVar].class = class
	fieldTy := in.Instantiate(field.Ty, c.span, nil, c.a)
	in.flow(fieldTy, c.out, Because(c.span, fmt.Sprintf("`%s::%s` is used here", in.className(class), c.name)))
	in.MakeImpl(c.a, class, c.span, field.Span)
	return true
}

// hasObligation reports whether generic idx of scope requires class.
func (in *Infer) hasObligation(scope types.GenScopeID, idx int, class types.ClassID) bool {
	if scope == types.NoGenScope {
		return false
	}
	g := in.env.Store.GenScope(scope)
	if idx >= len(g.Params) {
		return false
	}
	for _, o := range g.Params[idx].Obligations() {
		if o.Class == class {
			return true
		}
	}
	return false
}

func (in *Infer) tryImpl(c *constraint) bool {
	info := in.vars[in.follow(c.a)].info
	switch info.Kind {
	case InfoUnknown:
		return false
	case InfoError, InfoSelf, InfoAssoc:
		return true
	case InfoGen:
		if !in.hasObligation(info.Scope, info.Index, c.class) {
			in.unresolved(c, fmt.Sprintf("generic `%s` is not required to implement `%s`",
				in.genName(info.Scope, info.Index), in.className(c.class)))
		}
		return true
	}
	m, done := in.selectMember(c)
	if m != nil {
		in.applyMember(m, c.a, c.span)
	}
	return done
}

func (in *Infer) unresolved(c *constraint, msg string) {
	diag.ReportError(in.env.Reporter, diag.SemaUnresolvedObligation, c.span, msg).
		WithNote(c.oblSpan, "required by this obligation").
		Emit()
}

// selectMember picks the member of c.class whose self type matches c.a. It
// returns done=false while the choice still depends on unknowns.
func (in *Infer) selectMember(c *constraint) (*symbols.Member, bool) {
	var yes []*symbols.Member
	maybe := false
	for _, id := range in.env.Table.MembersOf(c.class) {
		m := in.env.Table.Member(id)
		if m.Self == types.NoTyID {
			// self types are still being lowered
			continue
		}
		switch in.match(m.Self, m.GenScope, c.a, make(map[int]TyVar), 0) {
		case matchYes:
			yes = append(yes, m)
		case matchMaybe:
			maybe = true
		}
	}
	if maybe {
		return nil, false
	}
	switch len(yes) {
	case 0:
		in.unresolved(c, fmt.Sprintf("type `%s` does not implement class `%s`", in.Display(c.a), in.className(c.class)))
		return nil, true
	case 1:
		return yes[0], true
	}
	b := diag.ReportError(in.env.Reporter, diag.SemaAmbiguousImpl, c.span,
		fmt.Sprintf("more than one member of `%s` applies to `%s`", in.className(c.class), in.Display(c.a)))
	for _, m := range yes {
		b.WithNote(m.Span, "candidate member")
	}
	b.Emit()
	return nil, true
}

// applyMember unifies ty with a fresh instance of m's self type and posts m's
// own obligations. It returns the generic substitution used.
func (in *Infer) applyMember(m *symbols.Member, ty TyVar, span source.Span) func(types.GenScopeID, int) (TyVar, bool) {
	var params []types.GenParam
	if m.GenScope != types.NoGenScope {
		params = in.env.Store.GenScope(m.GenScope).Params
	}
	fresh := make([]TyVar, len(params))
	for i := range params {
		fresh[i] = in.Insert(span, UnknownFrom(params[i].Span))
	}
	gens := func(scope types.GenScopeID, idx int) (TyVar, bool) {
		if scope == m.GenScope && idx < len(fresh) {
			return fresh[idx], true
		}
		return 0, false
	}
	in.flow(ty, in.Instantiate(m.Self, span, gens, 0), At(span))
	for i := range params {
		for _, o := range params[i].Obligations() {
			in.MakeImpl(fresh[i], o.Class, span, o.Span)
		}
	}
	return gens
}

func (in *Infer) tryClassAssoc(c *constraint) bool {
	info := in.vars[in.follow(c.a)].info
	switch info.Kind {
	case InfoUnknown:
		return false
	case InfoError:
		in.poison(c.out)
		return true
	}
	class := c.class
	if class == 0 {
		cands := in.env.Table.ClassesWithAssoc(c.name)
		switch len(cands) {
		case 0:
			diag.ReportError(in.env.Reporter, diag.SemaNoSuchAssoc, c.span,
				fmt.Sprintf("no class declares an associated type called `%s`", c.name)).Emit()
			in.poison(c.out)
			return true
		case 1:
			class = cands[0]
		default:
			diag.ReportError(in.env.Reporter, diag.SemaAmbiguousClassField, c.span,
				fmt.Sprintf("associated type `%s` is declared by more than one class", c.name)).Emit()
			in.poison(c.out)
			return true
		}
	}
	abstract := func() {
		in.flow(in.Insert(c.span, Assoc(c.a, class, c.name)), c.out, At(c.span))
	}
	switch info.Kind {
	case InfoSelf, InfoAssoc:
		abstract()
		return true
	case InfoGen:
		if in.hasObligation(info.Scope, info.Index, class) {
			abstract()
		} else {
			in.unresolved(&constraint{span: c.span, oblSpan: c.span}, fmt.Sprintf(
				"generic `%s` must implement `%s` to have an associated type `%s`",
				in.genName(info.Scope, info.Index), in.className(class), c.name))
			in.poison(c.out)
		}
		return true
	}
	probe := &constraint{kind: conImpl, span: c.span, a: c.a, class: class, oblSpan: c.span}
	m, done := in.selectMember(probe)
	if !done {
		return false
	}
	if m == nil {
		in.poison(c.out)
		return true
	}
	gens := in.applyMember(m, c.a, c.span)
	ty, ok := m.AssocTy(c.name)
	if !ok {
		diag.ReportError(in.env.Reporter, diag.SemaNoSuchAssoc, c.span,
			fmt.Sprintf("member does not define associated type `%s`", c.name)).
			WithNote(m.Span, "member declared here").
			Emit()
		in.poison(c.out)
		return true
	}
	in.flow(in.Instantiate(ty, c.span, gens, 0), c.out, At(c.span))
	return true
}

func (in *Infer) trySendRecv(c *constraint) bool {
	info := in.effects[in.followEffect(c.eff)].info
	switch info.Kind {
	case EffUnknown:
		return false
	case EffError:
		return true
	}
	decl := in.env.Table.Effect(info.Decl)
	gens := func(scope types.GenScopeID, idx int) (TyVar, bool) {
		if scope == decl.GenScope && idx < len(info.Args) {
			return info.Args[idx], true
		}
		return 0, false
	}
	in.flow(c.a, in.Instantiate(decl.Send, c.span, gens, 0),
		Because(c.span, fmt.Sprintf("values sent through `%s` must match its declaration", decl.Name)))
	in.flow(in.Instantiate(decl.Recv, c.span, gens, 0), c.b,
		Because(c.span, fmt.Sprintf("values received from `%s` must match its declaration", decl.Name)))
	return true
}

// defaultOne resolves the earliest operator with one known primitive side by
// assuming the other side has the same type.
func (in *Infer) defaultOne() bool {
	for _, c := range in.pending {
		if c.kind != conBinary {
			continue
		}
		a, b := in.kindOf(c.a), in.kindOf(c.b)
		switch {
		case a == InfoPrim && b == InfoUnknown:
			in.flow(c.b, c.a, At(c.span))
			return true
		case b == InfoPrim && a == InfoUnknown:
			in.flow(c.a, c.b, At(c.span))
			return true
		}
	}
	return false
}

func (in *Infer) reportLeftovers() {
	for _, c := range in.pending {
		var msg string
		switch c.kind {
		case conAccess:
			msg = fmt.Sprintf("cannot infer the type whose field `%s` is accessed", c.name)
		case conUpdate:
			msg = fmt.Sprintf("cannot infer the record type whose field `%s` is updated", c.name)
		case conBinary:
			msg = fmt.Sprintf("cannot infer the operand types of `%s`", c.op)
		case conClassAssoc:
			msg = fmt.Sprintf("cannot infer the type whose associated type `%s` is used", c.name)
		case conImpl:
			msg = fmt.Sprintf("cannot infer which member of `%s` applies", in.className(c.class))
		case conEffectSendRecv:
			msg = "cannot infer the effect used here"
		default:
			msg = "cannot infer type"
		}
		diag.ReportError(in.env.Reporter, diag.SemaCannotInfer, c.span, msg).Emit()
		for _, v := range []TyVar{c.a, c.b, c.out} {
			if v != 0 {
				in.poison(v)
			}
		}
		if c.eff != 0 {
			if e := in.followEffect(c.eff); in.effects[e].info.Kind == EffUnknown {
				in.effects[e].info = EffectInfo{Kind: EffError}
			}
		}
	}
	in.pending = nil
}
