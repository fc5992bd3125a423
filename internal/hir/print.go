package hir

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"tao/internal/types"
)

// Printer dumps a solved program as an indented tree.
type Printer struct {
	w      io.Writer
	prog   *Program
	indent int
	err    error
}

// Dump writes every definition and member field of prog to w.
func Dump(w io.Writer, prog *Program) error {
	p := &Printer{w: w, prog: prog}
	for _, id := range prog.DefIDs() {
		def := prog.Table.Def(id)
		p.printf("def %s : %s\n", def.Name, p.typeStr(def.BodyTy))
		p.indent++
		p.printExpr(prog.Defs[id])
		p.indent--
	}
	for _, id := range prog.MemberIDs() {
		m := prog.Table.Member(id)
		p.printf("member %s of %s\n", p.typeStr(m.Self), prog.Table.ClassName(m.Class))
		p.indent++
		fields := prog.Members[id]
		for _, name := range slices.Sorted(maps.Keys(fields)) {
			p.printIndent()
			p.printf("%s =\n", name)
			p.indent++
			p.printExpr(fields[name])
			p.indent--
		}
		p.indent--
	}
	return p.err
}

func (p *Printer) printExpr(e *Expr) {
	p.printIndent()
	if e == nil {
		p.printf("<nil>\n")
		return
	}
	p.printf("%s", e.Kind)
	switch d := e.Data.(type) {
	case LiteralData:
		p.printf(" %s", d.Lit)
	case LocalData:
		p.printf(" %s", d.Name)
	case GlobalData:
		p.printf(" %s", p.prog.Table.Def(d.Def).Name)
		if len(d.Gens) > 0 {
			p.printf(" [%s]", p.typeList(d.Gens))
		}
	case AccessData:
		p.printf(" .%s", d.Field)
	case UnaryData:
		p.printf(" %s", d.Op)
	case BinaryData:
		p.printf(" %s", d.Op)
	case MatchData:
		if d.Hidden {
			p.printf(" hidden")
		}
	case FuncData:
		p.printf(" %s", d.Param)
	case ConsData:
		p.printf(" %s", d.Variant)
	case ClassAccessData:
		p.printf(" %s::%s::%s", p.typeStr(d.Self), p.prog.Table.ClassName(d.Class), d.Field)
	case IntrinsicData:
		p.printf(" %s", d.Intrinsic)
	case HandleData:
		p.printf(" %s", d.SendParam)
	}
	p.printf(" : %s\n", p.typeStr(e.Ty))

	p.indent++
	switch d := e.Data.(type) {
	case MatchData:
		p.printExpr(d.Scrutinee)
		for _, a := range d.Arms {
			p.printIndent()
			p.printf("| %s\n", p.bindingStr(a.Binding))
			p.indent++
			p.printExpr(a.Body)
			p.indent--
		}
	case RecordData:
		p.printFields(d.Fields)
	case UpdateData:
		p.printExpr(d.Record)
		p.printFields(d.Fields)
	default:
		for _, c := range Children(e) {
			p.printExpr(c)
		}
	}
	p.indent--
}

func (p *Printer) printFields(fs []FieldInit) {
	for _, f := range fs {
		p.printIndent()
		p.printf("%s:\n", f.Name)
		p.indent++
		p.printExpr(f.Value)
		p.indent--
	}
}

func (p *Printer) bindingStr(b *Binding) string {
	if b == nil {
		return "_"
	}
	var sb strings.Builder
	if b.Name != "" {
		sb.WriteString(b.Name)
		if b.Pat.Kind == PatWildcard {
			return sb.String()
		}
		sb.WriteString(" @ ")
	}
	pat := &b.Pat
	switch pat.Kind {
	case PatError:
		sb.WriteString("!")
	case PatWildcard:
		sb.WriteString("_")
	case PatLiteral:
		sb.WriteString(pat.Lit.String())
	case PatSingle:
		sb.WriteString(p.bindingStr(pat.Inner))
	case PatAdd:
		fmt.Fprintf(&sb, "%s + %d", p.bindingStr(pat.Inner), pat.N)
	case PatTuple:
		sb.WriteByte('(')
		p.bindingList(&sb, pat.Items)
		sb.WriteByte(')')
	case PatRecord:
		sb.WriteByte('{')
		for i, f := range pat.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			sb.WriteString(p.bindingStr(f.Binding))
		}
		sb.WriteByte('}')
	case PatListExact, PatListFront:
		sb.WriteByte('[')
		p.bindingList(&sb, pat.Items)
		if pat.Kind == PatListFront {
			if len(pat.Items) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("..")
			if pat.Tail != nil {
				sb.WriteString(p.bindingStr(pat.Tail))
			}
		}
		sb.WriteByte(']')
	case PatDecons:
		sb.WriteString(pat.Variant)
		sb.WriteByte(' ')
		sb.WriteString(p.bindingStr(pat.Inner))
	}
	return sb.String()
}

func (p *Printer) bindingList(sb *strings.Builder, bs []*Binding) {
	for i, b := range bs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.bindingStr(b))
	}
}

func (p *Printer) typeList(ids []types.TyID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = p.typeStr(id)
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) typeStr(id types.TyID) string {
	if id == types.NoTyID {
		return "?"
	}
	return p.prog.Store.Display(id, p.prog.Table)
}

func (p *Printer) printIndent() {
	for range p.indent {
		p.printf("  ")
	}
}

func (p *Printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
