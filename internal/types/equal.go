package types

// Equal compares two nodes structurally. Generic references compare by index
// only, so instantiations written under different generic scopes still match.
func (s *Store) Equal(a, b TyID) bool {
	if a == b {
		return true
	}
	x, y := s.Get(a), s.Get(b)
	if x.Kind != y.Kind {
		return false
	}
	switch x.Kind {
	case KindError:
		return x.Reason == y.Reason
	case KindPrim:
		return x.Prim == y.Prim
	case KindList:
		return s.Equal(x.Elem, y.Elem)
	case KindTuple:
		return s.equalAll(x.Items, y.Items)
	case KindRecord:
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !s.Equal(x.Fields[i].Ty, y.Fields[i].Ty) {
				return false
			}
		}
		return true
	case KindFunc:
		return s.Equal(x.In, y.In) && s.Equal(x.Out, y.Out)
	case KindData:
		return x.Data == y.Data && s.equalAll(x.Items, y.Items)
	case KindGen:
		return x.Index == y.Index
	case KindSelf:
		return true
	case KindAssoc:
		return x.Class == y.Class && x.Name == y.Name && s.Equal(x.Elem, y.Elem)
	case KindEffect:
		return s.EffectEqual(x.Effect, y.Effect) && s.Equal(x.Elem, y.Elem)
	}
	return false
}

// EffectEqual compares descriptors; two unknown effects are equal.
func (s *Store) EffectEqual(a, b EffectID) bool {
	if a == b {
		return true
	}
	x, y := s.Effect(a), s.Effect(b)
	if x.Known != y.Known {
		return false
	}
	if !x.Known {
		return true
	}
	return x.Decl == y.Decl && s.equalAll(x.Args, y.Args)
}

func (s *Store) equalAll(xs, ys []TyID) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !s.Equal(xs[i], ys[i]) {
			return false
		}
	}
	return true
}
