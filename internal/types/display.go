package types

import (
	"strings"
)

// Names resolves registry ids to user-facing names for rendering.
type Names interface {
	DataName(DataID) string
	ClassName(ClassID) string
	EffectName(EffectDeclID) string
}

// Display renders a type the way it would be written in source.
func (s *Store) Display(id TyID, names Names) string {
	var sb strings.Builder
	s.display(&sb, id, names, false)
	return sb.String()
}

func (s *Store) display(sb *strings.Builder, id TyID, names Names, nested bool) {
	if id == NoTyID {
		sb.WriteString("?")
		return
	}
	t := s.Get(id)
	switch t.Kind {
	case KindError:
		sb.WriteString("!")
		if t.Reason != ReasonUnknown {
			sb.WriteString(t.Reason.String())
		}
	case KindPrim:
		sb.WriteString(t.Prim.String())
	case KindList:
		sb.WriteByte('[')
		s.display(sb, t.Elem, names, false)
		sb.WriteByte(']')
	case KindTuple:
		sb.WriteByte('(')
		for i, it := range t.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			s.display(sb, it, names, false)
		}
		if len(t.Items) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case KindRecord:
		sb.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			s.display(sb, f.Ty, names, false)
		}
		sb.WriteByte('}')
	case KindFunc:
		if nested {
			sb.WriteByte('(')
		}
		s.display(sb, t.In, names, true)
		sb.WriteString(" -> ")
		s.display(sb, t.Out, names, false)
		if nested {
			sb.WriteByte(')')
		}
	case KindData:
		wrap := nested && len(t.Items) > 0
		if wrap {
			sb.WriteByte('(')
		}
		sb.WriteString(dataName(names, t.Data))
		for _, a := range t.Items {
			sb.WriteByte(' ')
			s.display(sb, a, names, true)
		}
		if wrap {
			sb.WriteByte(')')
		}
	case KindGen:
		sb.WriteString(s.genName(t.Scope, t.Index))
	case KindSelf:
		sb.WriteString("Self")
	case KindAssoc:
		s.display(sb, t.Elem, names, true)
		sb.WriteString("::")
		if names != nil {
			sb.WriteString(names.ClassName(t.Class))
			sb.WriteString("::")
		}
		sb.WriteString(t.Name)
	case KindEffect:
		if nested {
			sb.WriteByte('(')
		}
		s.displayEffect(sb, t.Effect, names)
		sb.WriteString(" ~ ")
		s.display(sb, t.Elem, names, true)
		if nested {
			sb.WriteByte(')')
		}
	}
}

func (s *Store) displayEffect(sb *strings.Builder, id EffectID, names Names) {
	e := s.Effect(id)
	if !e.Known {
		sb.WriteString("?")
		return
	}
	if names != nil {
		sb.WriteString(names.EffectName(e.Decl))
	} else {
		sb.WriteString("effect")
	}
	for _, a := range e.Args {
		sb.WriteByte(' ')
		s.display(sb, a, names, true)
	}
}

func (s *Store) genName(scope GenScopeID, idx int) string {
	if int(scope) < len(s.scopes) {
		g := &s.scopes[scope]
		if idx < len(g.Params) {
			return g.Params[idx].Name
		}
	}
	return "?gen"
}

func dataName(names Names, id DataID) string {
	if names == nil {
		return "data"
	}
	return names.DataName(id)
}
