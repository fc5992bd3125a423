package infer

import (
	"strings"

	"tao/internal/types"
)

// Display renders what is currently known about v; unknown parts print as `?`.
func (in *Infer) Display(v TyVar) string {
	var sb strings.Builder
	in.display(&sb, v, false, 0)
	return sb.String()
}

func (in *Infer) display(sb *strings.Builder, v TyVar, nested bool, depth int) {
	if depth > 32 {
		sb.WriteString("...")
		return
	}
	info := in.vars[in.follow(v)].info
	names := in.env.Table
	switch info.Kind {
	case InfoUnknown:
		sb.WriteByte('?')
	case InfoError:
		sb.WriteByte('!')
	case InfoPrim:
		sb.WriteString(info.Prim.String())
	case InfoList:
		sb.WriteByte('[')
		in.display(sb, info.Elem, false, depth+1)
		sb.WriteByte(']')
	case InfoTuple:
		sb.WriteByte('(')
		for i, it := range info.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.display(sb, it, false, depth+1)
		}
		if len(info.Items) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case InfoRecord:
		sb.WriteByte('{')
		for i, f := range info.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			in.display(sb, f.Var, false, depth+1)
		}
		sb.WriteByte('}')
	case InfoFunc:
		if nested {
			sb.WriteByte('(')
		}
		in.display(sb, info.In, true, depth+1)
		sb.WriteString(" -> ")
		in.display(sb, info.Out, false, depth+1)
		if nested {
			sb.WriteByte(')')
		}
	case InfoData:
		paren := nested && len(info.Items) > 0
		if paren {
			sb.WriteByte('(')
		}
		sb.WriteString(names.DataName(info.Data))
		for _, a := range info.Items {
			sb.WriteByte(' ')
			in.display(sb, a, true, depth+1)
		}
		if paren {
			sb.WriteByte(')')
		}
	case InfoGen:
		sb.WriteString(in.genName(info.Scope, info.Index))
	case InfoSelf:
		sb.WriteString("Self")
	case InfoAssoc:
		in.display(sb, info.Elem, true, depth+1)
		sb.WriteString("::")
		sb.WriteString(info.Name)
	case InfoEffect:
		if nested {
			sb.WriteByte('(')
		}
		sb.WriteString(in.displayEffect(info.Effect))
		sb.WriteString(" ~ ")
		in.display(sb, info.Elem, true, depth+1)
		if nested {
			sb.WriteByte(')')
		}
	}
}

func (in *Infer) displayEffect(e EffectVar) string {
	info := in.effects[in.followEffect(e)].info
	switch info.Kind {
	case EffKnown:
		var sb strings.Builder
		sb.WriteString(in.env.Table.EffectName(info.Decl))
		for _, a := range info.Args {
			sb.WriteByte(' ')
			in.display(&sb, a, true, 1)
		}
		return sb.String()
	case EffError:
		return "!"
	default:
		return "?"
	}
}

func (in *Infer) genName(scope types.GenScopeID, idx int) string {
	if scope != types.NoGenScope {
		g := in.env.Store.GenScope(scope)
		if idx < len(g.Params) {
			return g.Params[idx].Name
		}
	}
	return "?gen"
}
