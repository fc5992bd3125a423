package mono

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"tao/internal/hir"
	"tao/internal/types"
)

type printer struct {
	w      io.Writer
	prog   *Program
	indent int
	err    error
}

// SortedKeys returns the keys of every specialization in a stable order.
func (p *Program) SortedKeys() []Key {
	return slices.SortedFunc(maps.Keys(p.Defs), compareKeys)
}

// Print writes every specialization of prog as an indented tree, entry first.
func Print(w io.Writer, prog *Program) error {
	p := &printer{w: w, prog: prog}
	p.printf("entry %s\n", prog.Entry)
	for _, k := range prog.SortedKeys() {
		d := prog.Defs[k]
		p.printf("def %s", d.Name)
		if len(d.Args) > 0 {
			p.printf(" [%s]", p.typeList(d.Args))
		}
		p.printf(" (%s) : %s\n", k, p.typeStr(d.Body.Ty))
		p.indent++
		p.expr(d.Body)
		p.indent--
	}
	return p.err
}

func (p *printer) expr(e *Expr) {
	p.printIndent()
	p.printf("%s", e.Kind)
	switch e.Kind {
	case ExprLiteral:
		p.printf(" %s", e.Lit)
	case ExprLocal, ExprFunc:
		p.printf(" %s", e.Name)
	case ExprGlobal:
		p.printf(" %s", p.globalName(e.Key))
	case ExprAccess:
		p.printf(" .%s", e.Name)
		if e.Indirections > 0 {
			p.printf(" through %d", e.Indirections)
		}
	case ExprBinary:
		p.printf(" %s", e.Op)
	case ExprMatch:
		if e.Hidden {
			p.printf(" hidden")
		}
	case ExprCons:
		p.printf(" %s", e.Variant)
	case ExprIntrinsic:
		p.printf(" %s", e.Intrinsic)
	case ExprHandle:
		p.printf(" %s %s", p.typeStr(e.Eff), e.Name)
	case ExprPropagate, ExprBasin, ExprSuspend:
		p.printf(" %s", p.typeStr(e.Eff))
	}
	p.printf(" : %s\n", p.typeStr(e.Ty))

	p.indent++
	for _, x := range e.Items {
		p.expr(x)
	}
	for _, t := range e.Tails {
		p.printIndent()
		p.printf("..\n")
		p.indent++
		p.expr(t)
		p.indent--
	}
	for _, f := range e.Fields {
		p.printIndent()
		p.printf("%s:\n", f.Name)
		p.indent++
		p.expr(f.Value)
		p.indent--
	}
	for _, a := range e.Arms {
		p.printIndent()
		p.printf("| %s\n", p.bindingStr(a.Binding))
		p.indent++
		p.expr(a.Body)
		p.indent--
	}
	p.indent--
}

func (p *printer) globalName(k Key) string {
	if d, ok := p.prog.Defs[k]; ok {
		return fmt.Sprintf("%s (%s)", d.Name, k)
	}
	return k.String()
}

func (p *printer) bindingStr(b *Binding) string {
	if b == nil {
		return "_"
	}
	var sb strings.Builder
	if b.Name != "" {
		sb.WriteString(b.Name)
		if b.Kind == hir.PatWildcard {
			return sb.String()
		}
		sb.WriteString(" @ ")
	}
	switch b.Kind {
	case hir.PatWildcard:
		sb.WriteString("_")
	case hir.PatLiteral:
		sb.WriteString(b.Lit.String())
	case hir.PatSingle:
		sb.WriteString(p.bindingStr(b.Inner))
	case hir.PatAdd:
		fmt.Fprintf(&sb, "%s + %d", p.bindingStr(b.Inner), b.N)
	case hir.PatTuple:
		sb.WriteString("(")
		sb.WriteString(p.bindingList(b.Items))
		sb.WriteString(")")
	case hir.PatRecord:
		sb.WriteString("{")
		for i, f := range b.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %s", f.Name, p.bindingStr(f.Binding))
		}
		sb.WriteString("}")
	case hir.PatListExact, hir.PatListFront:
		sb.WriteString("[")
		sb.WriteString(p.bindingList(b.Items))
		if b.Kind == hir.PatListFront {
			if len(b.Items) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("..")
			if b.Tail != nil {
				sb.WriteString(p.bindingStr(b.Tail))
			}
		}
		sb.WriteString("]")
	case hir.PatDecons:
		fmt.Fprintf(&sb, "%s %s", b.Variant, p.bindingStr(b.Inner))
	}
	return sb.String()
}

func (p *printer) bindingList(bs []*Binding) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = p.bindingStr(b)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) typeStr(id types.ConTyID) string {
	if id == types.NoConTyID {
		return "?"
	}
	return p.prog.Types.Display(id, p.prog.Names)
}

func (p *printer) typeList(ids []types.ConTyID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = p.typeStr(id)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) printIndent() {
	p.printf("%s", strings.Repeat("  ", p.indent))
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
