package types

import (
	"fmt"

	"fortio.org/safecast"

	"tao/internal/source"
)

// Store is the append-only arena of generic types, generic scopes and effect
// descriptors. It never deduplicates: two ids are the same node only when one
// insertion produced them.
type Store struct {
	tys      []Ty
	spans    []source.Span
	scopes   []GenScope
	effects  []Effect
	effSpans []source.Span
	checked  bool
}

// NewStore constructs a store with slot 0 of every table reserved.
func NewStore() *Store {
	return &Store{
		tys:      []Ty{MakeError(ReasonUnknown)},
		spans:    []source.Span{{}},
		scopes:   []GenScope{{}},
		effects:  []Effect{{}},
		effSpans: []source.Span{{}},
	}
}

func nextID(n int, what string) uint32 {
	id, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("types: %s overflow: %w", what, err))
	}
	return id
}

// Insert appends a node and returns its id.
func (s *Store) Insert(span source.Span, t Ty) TyID {
	id := TyID(nextID(len(s.tys), "len(tys)"))
	s.tys = append(s.tys, t)
	s.spans = append(s.spans, span)
	return id
}

// Get returns the node for id. Unknown ids panic.
func (s *Store) Get(id TyID) Ty {
	if id == NoTyID || int(id) >= len(s.tys) {
		panic(fmt.Sprintf("types: invalid TyID %d", id))
	}
	return s.tys[id]
}

// Span returns where the node was written or inferred.
func (s *Store) Span(id TyID) source.Span {
	if int(id) >= len(s.spans) {
		return source.Span{}
	}
	return s.spans[id]
}

// Len returns the number of inserted nodes.
func (s *Store) Len() int { return len(s.tys) - 1 }

// InsertEffect registers an effect descriptor.
func (s *Store) InsertEffect(span source.Span, e Effect) EffectID {
	id := EffectID(nextID(len(s.effects), "len(effects)"))
	s.effects = append(s.effects, e)
	s.effSpans = append(s.effSpans, span)
	return id
}

// Effect returns the descriptor for id; slot 0 and unknown ids read as an unknown effect.
func (s *Store) Effect(id EffectID) Effect {
	if int(id) >= len(s.effects) {
		return UnknownEffect()
	}
	return s.effects[id]
}

// EffectSpan returns where the effect was introduced.
func (s *Store) EffectSpan(id EffectID) source.Span {
	if int(id) >= len(s.effSpans) {
		return source.Span{}
	}
	return s.effSpans[id]
}
