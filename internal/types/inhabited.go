package types

import (
	set "github.com/hashicorp/go-set/v3"
)

// DataSource gives access to constructor payloads of nominal data types.
// Payload generics refer to the data type's own generic scope.
type DataSource interface {
	DataPayloads(id DataID) []TyID
}

// GenInhabited answers whether the generic at index of scope has inhabitants.
type GenInhabited func(scope GenScopeID, index int) bool

// IsInhabited reports whether any value of the type can exist. Data types are
// inhabited when one of their constructors is; a data type already being
// expanded on the current path counts as uninhabited, which terminates
// self-referential declarations. Effect objects are always inhabited since they
// describe a computation that has not produced its value yet.
func (s *Store) IsInhabited(id TyID, datas DataSource, gen GenInhabited) bool {
	return s.inhabited(id, datas, gen, set.New[DataID](4))
}

func (s *Store) inhabited(id TyID, datas DataSource, gen GenInhabited, path *set.Set[DataID]) bool {
	t := s.Get(id)
	switch t.Kind {
	case KindTuple:
		for _, it := range t.Items {
			if !s.inhabited(it, datas, gen, path) {
				return false
			}
		}
		return true
	case KindRecord:
		for _, f := range t.Fields {
			if !s.inhabited(f.Ty, datas, gen, path) {
				return false
			}
		}
		return true
	case KindGen:
		if gen == nil {
			return true
		}
		return gen(t.Scope, t.Index)
	case KindData:
		if path.Contains(t.Data) {
			return false
		}
		path.Insert(t.Data)
		defer path.Remove(t.Data)
		args := t.Items
		inner := func(_ GenScopeID, idx int) bool {
			if idx >= len(args) {
				return true
			}
			return s.inhabited(args[idx], datas, gen, path)
		}
		for _, payload := range datas.DataPayloads(t.Data) {
			if s.inhabited(payload, datas, inner, path) {
				return true
			}
		}
		return false
	default:
		// prim, list, func, self, assoc, effect, error
		return true
	}
}
