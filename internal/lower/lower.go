// Package lower walks a parsed module, registers its items, lowers every type
// annotation into the store and checks every body with a solver session,
// producing a solved hir.Program.
package lower

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"tao/internal/ast"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/infer"
	"tao/internal/source"
	"tao/internal/symbols"
	"tao/internal/trace"
	"tao/internal/types"
)

type defState uint8

const (
	defPending defState = iota
	defLowering
	defDone
)

// Lowerer lowers one module. It is single-use and not safe for concurrent use.
type Lowerer struct {
	file   source.FileID
	mod    *ast.Module
	store  *types.Store
	table  *symbols.Table
	rep    diag.Reporter
	prog   *hir.Program
	defs   map[types.DefID]defState
	tracer trace.Tracer
	parent uint64
}

// Check lowers mod, whose spans point into file, and reports problems to rep.
// It always returns a program; bodies that failed to lower contain error nodes.
func Check(ctx context.Context, mod *ast.Module, file source.FileID, rep diag.Reporter) *hir.Program {
	tracer := trace.FromContext(ctx)
	pass := trace.Begin(tracer, trace.ScopePass, "lower", trace.CurrentSpan(ctx).SpanID)
	defer pass.End("")

	end, err := safecast.Conv[uint32](len(mod.Source.Text))
	if err != nil {
		end = ^uint32(0)
	}
	store := types.NewStore()
	table := symbols.NewTable()
	l := &Lowerer{
		file:   file,
		mod:    mod,
		store:  store,
		table:  table,
		rep:    rep,
		prog:   hir.NewProgram(store, table, source.Span{File: file, Start: 0, End: end}),
		defs:   make(map[types.DefID]defState),
		tracer: tracer,
		parent: pass.ID(),
	}
	l.register()
	store.CheckGenScopes(table.LookupClass, rep)
	l.lowerSignatures()
	l.checkInhabited()
	for i := uint32(1); i <= table.Defs.Len(); i++ {
		l.ensureDef(types.DefID(i))
	}
	for i := uint32(1); i <= table.Members.Len(); i++ {
		l.lowerMemberFields(types.MemberID(i))
	}
	pass.WithExtra("defs", fmt.Sprint(len(l.prog.Defs)))
	return l.prog
}

func (l *Lowerer) span(s ast.Span) source.Span { return s.In(l.file) }

func (l *Lowerer) env() infer.Env {
	return infer.Env{Store: l.store, Table: l.table, Reporter: l.rep}
}

func (l *Lowerer) duplicate(err error) {
	dup, ok := err.(*symbols.DuplicateError)
	if !ok {
		return
	}
	diag.ReportError(l.rep, diag.SemaDuplicateItem, dup.Span, dup.Error()).
		WithNote(dup.Previous, "first declared here").
		Emit()
}

// genScope registers a generic parameter list. Repeated names are reported
// and dropped.
func (l *Lowerer) genScope(g ast.Generics) types.GenScopeID {
	if len(g.Params) == 0 {
		return types.NoGenScope
	}
	seen := make(map[string]source.Span, len(g.Params))
	params := make([]types.GenParam, 0, len(g.Params))
	for _, p := range g.Params {
		sp := l.span(p.Name.Span)
		if prev, ok := seen[p.Name.Name]; ok {
			diag.ReportError(l.rep, diag.SemaDuplicateGenName, sp,
				fmt.Sprintf("generic parameter `%s` is declared twice", p.Name.Name)).
				WithNote(prev, "first declared here").
				Emit()
			continue
		}
		seen[p.Name.Name] = sp
		param := types.GenParam{Name: p.Name.Name, Span: sp}
		for _, o := range p.Obligations {
			param.Written = append(param.Written, types.WrittenObligation{Class: o.Class.Name, Span: l.span(o.Class.Span)})
		}
		params = append(params, param)
	}
	return l.store.InsertGenScope(types.GenScope{Span: l.span(g.Span), Params: params})
}

// register fills the symbol table. Types are lowered later, once every name
// and every obligation is known.
func (l *Lowerer) register() {
	for i := range l.mod.Datas {
		d := &l.mod.Datas[i]
		data := symbols.Data{Name: d.Name.Name, Span: l.span(d.Name.Span), GenScope: l.genScope(d.Generics), Syntax: d}
		for _, v := range d.Variants {
			data.Cons = append(data.Cons, symbols.Cons{Name: v.Name.Name, Span: l.span(v.Name.Span)})
		}
		id, err := l.table.AddData(data)
		if err != nil {
			l.duplicate(err)
		}
		if id != 0 {
			if lang, ok := ast.LangName(d.Attrs); ok && lang == "go" {
				l.table.Lang.Go = id
			}
		}
	}
	for i := range l.mod.Aliases {
		a := &l.mod.Aliases[i]
		_, err := l.table.AddAlias(symbols.Alias{Name: a.Name.Name, Span: l.span(a.Name.Span), GenScope: l.genScope(a.Generics), Syntax: a})
		if err != nil {
			l.duplicate(err)
		}
	}
	for i := range l.mod.Effects {
		e := &l.mod.Effects[i]
		_, err := l.table.AddEffect(symbols.EffectDecl{Name: e.Name.Name, Span: l.span(e.Name.Span), GenScope: l.genScope(e.Generics), Syntax: e})
		if err != nil {
			l.duplicate(err)
		}
	}
	for i := range l.mod.Classes {
		c := &l.mod.Classes[i]
		id, err := l.table.AddClass(symbols.Class{Name: c.Name.Name, Span: l.span(c.Name.Span), Assoc: c.Assoc, Syntax: c})
		if err != nil {
			l.duplicate(err)
			continue
		}
		switch lang, _ := ast.LangName(c.Attrs); lang {
		case "eq":
			l.table.Lang.Eq = id
		case "neg":
			l.table.Lang.Neg = id
		case "not":
			l.table.Lang.Not = id
		}
	}
	for i := range l.mod.Members {
		m := &l.mod.Members[i]
		member := symbols.Member{Span: l.span(m.Span), GenScope: l.genScope(m.Generics), ClassName: m.Class, Syntax: m}
		if id, ok := l.table.LookupClass(m.Class.Name); ok {
			member.Class = id
		} else {
			diag.ReportError(l.rep, diag.SemaNoSuchClass, l.span(m.Class.Span),
				fmt.Sprintf("no such class `%s`", m.Class.Name)).Emit()
		}
		l.table.AddMember(member)
	}
	for i := range l.mod.Defs {
		d := &l.mod.Defs[i]
		id, err := l.table.AddDef(symbols.Def{Name: d.Name.Name, Span: l.span(d.Name.Span), Attrs: d.Attrs, GenScope: l.genScope(d.Generics), Syntax: d})
		if err != nil {
			l.duplicate(err)
			continue
		}
		switch lang, _ := ast.LangName(d.Attrs); lang {
		case "io_unit":
			l.table.Lang.IoUnit = id
		case "io_bind":
			l.table.Lang.IoBind = id
		}
	}
}

type selfMode uint8

const (
	selfNone selfMode = iota
	// selfAbstract keeps Self as a placeholder, as in class signatures.
	selfAbstract
	// selfMember makes Self the member's own type.
	selfMember
)

// declType lowers a type annotation of a declaration in a scratch session and
// stores the result.
func (l *Lowerer) declType(t *ast.Type, scope types.GenScopeID, mode selfMode, self types.TyID) types.TyID {
	in := infer.New(l.env(), scope)
	s := &session{l: l, in: in, selfOK: mode != selfNone}
	if mode == selfMember && self != types.NoTyID {
		in.SetSelf(in.Instantiate(self, l.span(t.Span), nil, 0))
	}
	v := s.ty(t)
	in.Solve()
	return in.Reify(v)
}

func (l *Lowerer) unitType(span source.Span) types.TyID {
	return l.store.Insert(span, types.MakeTuple())
}

// ensureAlias lowers an alias body on first use.
func (l *Lowerer) ensureAlias(id types.AliasID) {
	a := l.table.Alias(id)
	if a.State != symbols.AliasPending {
		return
	}
	a.State = symbols.AliasLowering
	ty := l.declType(a.Syntax.Type, a.GenScope, selfNone, types.NoTyID)
	a.Ty = ty
	a.State = symbols.AliasDone
}

func (l *Lowerer) lowerSignatures() {
	// member self types first: obligations met by members are resolved
	// against them while lowering every other signature
	for i := uint32(1); i <= l.table.Members.Len(); i++ {
		m := l.table.Member(types.MemberID(i))
		m.Self = l.declType(m.Syntax.Self, m.GenScope, selfNone, types.NoTyID)
	}
	for i := uint32(1); i <= l.table.Aliases.Len(); i++ {
		l.ensureAlias(types.AliasID(i))
	}
	for i := uint32(1); i <= l.table.Datas.Len(); i++ {
		d := l.table.Data(types.DataID(i))
		for j, v := range d.Syntax.Variants {
			if j >= len(d.Cons) {
				break
			}
			if v.Payload == nil {
				d.Cons[j].Payload = l.unitType(l.span(v.Name.Span))
				continue
			}
			d.Cons[j].Payload = l.declType(v.Payload, d.GenScope, selfNone, types.NoTyID)
		}
	}
	for i := uint32(1); i <= l.table.Effects.Len(); i++ {
		e := l.table.Effect(types.EffectDeclID(i))
		e.Send = l.declType(e.Syntax.Send, e.GenScope, selfNone, types.NoTyID)
		e.Recv = l.declType(e.Syntax.Recv, e.GenScope, selfNone, types.NoTyID)
	}
	for i := uint32(1); i <= l.table.Classes.Len(); i++ {
		c := l.table.Class(types.ClassID(i))
		seen := make(map[string]source.Span)
		for _, f := range c.Syntax.Fields {
			sp := l.span(f.Name.Span)
			if prev, ok := seen[f.Name.Name]; ok {
				diag.ReportError(l.rep, diag.SemaDuplicateField, sp,
					fmt.Sprintf("class field `%s` is declared twice", f.Name.Name)).
					WithNote(prev, "first declared here").
					Emit()
				continue
			}
			seen[f.Name.Name] = sp
			c.Fields = append(c.Fields, symbols.ClassField{Name: f.Name.Name, Span: sp,
				Ty: l.declType(f.Type, types.NoGenScope, selfAbstract, types.NoTyID)})
		}
	}
	for i := uint32(1); i <= l.table.Members.Len(); i++ {
		l.lowerMemberAssoc(types.MemberID(i))
	}
	for i := uint32(1); i <= l.table.Defs.Len(); i++ {
		d := l.table.Def(types.DefID(i))
		if d.Syntax.Hint != nil {
			d.Hint = l.declType(d.Syntax.Hint, d.GenScope, selfNone, types.NoTyID)
		}
	}
}

func (l *Lowerer) lowerMemberAssoc(id types.MemberID) {
	m := l.table.Member(id)
	class := l.table.Class(m.Class)
	for _, a := range m.Syntax.Assoc {
		sp := l.span(a.Name.Span)
		if class != nil && !class.HasAssoc(a.Name.Name) {
			diag.ReportError(l.rep, diag.SemaNoSuchAssoc, sp,
				fmt.Sprintf("class `%s` has no associated type `%s`", class.Name, a.Name.Name)).
				WithNote(class.Span, "class declared here").
				Emit()
			continue
		}
		ty := l.declType(a.Type, m.GenScope, selfMember, m.Self)
		m.Assoc = append(m.Assoc, symbols.MemberAssoc{Name: a.Name.Name, Span: sp, Ty: ty})
	}
	if class == nil {
		return
	}
	for _, name := range class.Assoc {
		if _, ok := m.AssocTy(name.Name); !ok {
			diag.ReportError(l.rep, diag.SemaMissingMemberField, m.Span,
				fmt.Sprintf("member of `%s` does not define associated type `%s`", class.Name, name.Name)).
				WithNote(l.span(name.Span), "declared here").
				Emit()
		}
	}
}

// checkInhabited warns about data types no value can ever have.
func (l *Lowerer) checkInhabited() {
	for i := uint32(1); i <= l.table.Datas.Len(); i++ {
		id := types.DataID(i)
		d := l.table.Data(id)
		n := l.store.GenScope(d.GenScope).Len()
		args := make([]types.TyID, n)
		for j := range args {
			args[j] = l.store.Insert(d.Span, types.MakeGen(d.GenScope, j))
		}
		ty := l.store.Insert(d.Span, types.MakeData(id, args))
		if !l.store.IsInhabited(ty, l.table, nil) {
			diag.ReportWarning(l.rep, diag.SemaUninhabitedData, d.Span,
				fmt.Sprintf("data type `%s` has no values: every constructor contains itself", d.Name)).Emit()
		}
	}
}

// ensureDef checks the body of id once. A definition reached again while its
// own body is being checked stays without a body type.
func (l *Lowerer) ensureDef(id types.DefID) {
	if l.defs[id] != defPending {
		return
	}
	l.defs[id] = defLowering
	defer func() { l.defs[id] = defDone }()

	d := l.table.Def(id)
	if d.Syntax.Body == nil {
		diag.ReportError(l.rep, diag.SemaMalformedTree, d.Span,
			fmt.Sprintf("definition `%s` has no body", d.Name)).Emit()
		return
	}
	span := trace.Begin(l.tracer, trace.ScopeItem, "infer_def", l.parent)
	span.WithExtra("def", d.Name)
	defer span.End("")

	in := infer.New(l.env(), d.GenScope)
	s := &session{l: l, in: in}
	nameSpan := d.Span
	defVar := in.Unknown(nameSpan)
	n := l.store.GenScope(d.GenScope).Len()
	own := make([]infer.TyVar, n)
	for i := range own {
		own[i] = in.Insert(nameSpan, infer.Gen(d.GenScope, i))
	}
	sc := EmptyScope().WithRecursive(d.Name, defVar, id, own)
	body := s.expr(d.Syntax.Body, sc)
	in.MakeFlow(body.Var, defVar, infer.At(body.Span))
	if d.Hint != types.NoTyID {
		hintSpan := l.span(d.Syntax.Hint.Span)
		hint := in.Instantiate(d.Hint, hintSpan, nil, 0)
		in.MakeFlow(defVar, hint, infer.Because(body.Span, "the body must match the type hint"))
	}
	in.Solve()
	hir.Reify(body, in)
	d.BodyTy = in.Reify(defVar)
	l.prog.Defs[id] = body
}

func (l *Lowerer) lowerMemberFields(id types.MemberID) {
	m := l.table.Member(id)
	class := l.table.Class(m.Class)
	if class == nil {
		return
	}
	given := make(map[string]bool, len(m.Syntax.Fields))
	for i := range m.Syntax.Fields {
		f := &m.Syntax.Fields[i]
		sp := l.span(f.Name.Span)
		cf, ok := class.Field(f.Name.Name)
		if !ok {
			diag.ReportError(l.rep, diag.SemaNoSuchClassField, sp,
				fmt.Sprintf("class `%s` has no field `%s`", class.Name, f.Name.Name)).
				WithNote(class.Span, "class declared here").
				Emit()
			continue
		}
		if given[f.Name.Name] {
			diag.ReportError(l.rep, diag.SemaDuplicateField, sp,
				fmt.Sprintf("field `%s` is defined twice", f.Name.Name)).Emit()
			continue
		}
		given[f.Name.Name] = true

		in := infer.New(l.env(), m.GenScope)
		self := in.Instantiate(m.Self, m.Span, nil, 0)
		in.SetSelf(self)
		s := &session{l: l, in: in, selfOK: true}
		expected := in.Instantiate(cf.Ty, sp, nil, self)
		body := s.expr(f.Body, EmptyScope())
		in.MakeFlow(body.Var, expected, infer.Because(sp, fmt.Sprintf("member field must match `%s::%s`", class.Name, cf.Name)))
		in.Solve()
		hir.Reify(body, in)
		l.prog.SetMemberField(id, f.Name.Name, body)
	}
	for _, cf := range class.Fields {
		if !given[cf.Name] {
			diag.ReportError(l.rep, diag.SemaMissingMemberField, m.Span,
				fmt.Sprintf("member of `%s` is missing field `%s`", class.Name, cf.Name)).
				WithNote(cf.Span, "declared here").
				Emit()
		}
	}
}
