package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// ConKind enumerates the shapes of concrete types.
type ConKind uint8

const (
	ConInvalid ConKind = iota
	ConPrim
	ConList
	ConTuple
	ConRecord
	ConFunc
	ConData
	ConEffect
)

func (k ConKind) String() string {
	switch k {
	case ConPrim:
		return "prim"
	case ConList:
		return "list"
	case ConTuple:
		return "tuple"
	case ConRecord:
		return "record"
	case ConFunc:
		return "func"
	case ConData:
		return "data"
	case ConEffect:
		return "effect"
	default:
		return "invalid"
	}
}

// ConField is one record entry of a concrete record.
type ConField struct {
	Name string
	Ty   ConTyID
}

// ConTy is a generics-free type. Generic references, Self and projections do
// not exist here: concretization substitutes them away.
type ConTy struct {
	Kind   ConKind
	Prim   Prim
	Elem   ConTyID    // list element, effect result
	In     ConTyID    // function input
	Out    ConTyID    // function output
	Items  []ConTyID  // tuple elements, data or effect arguments
	Fields []ConField // sorted by name
	Data   DataID
	Effect EffectDeclID
}

// FieldTy finds a record field by name.
func (t ConTy) FieldTy(name string) (ConTyID, bool) {
	i, ok := slices.BinarySearchFunc(t.Fields, name, func(f ConField, n string) int {
		return strings.Compare(f.Name, n)
	})
	if !ok {
		return NoConTyID, false
	}
	return t.Fields[i].Ty, true
}

// Interner provides stable ConTyIDs: structurally equal types always share an
// id, which specialization keys and cycle checks rely on. Safe for concurrent use.
type Interner struct {
	mu    sync.RWMutex
	types []ConTy
	index map[string]ConTyID
}

// NewInterner constructs an interner with slot 0 reserved as invalid.
func NewInterner() *Interner {
	return &Interner{
		types: []ConTy{{Kind: ConInvalid}},
		index: make(map[string]ConTyID, 64),
	}
}

// Intern ensures the provided descriptor has a stable ConTyID.
func (in *Interner) Intern(t ConTy) ConTyID {
	if t.Kind == ConInvalid {
		return NoConTyID
	}
	if t.Kind == ConRecord {
		t.Fields = slices.Clone(t.Fields)
		slices.SortFunc(t.Fields, func(a, b ConField) int { return strings.Compare(a.Name, b.Name) })
	}
	key := conKey(&t)

	in.mu.RLock()
	id, ok := in.index[key]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id = ConTyID(n)
	t.Items = slices.Clone(t.Items)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a ConTyID.
func (in *Interner) Lookup(id ConTyID) (ConTy, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoConTyID || int(id) >= len(in.types) {
		return ConTy{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id ConTyID) ConTy {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid ConTyID")
	}
	return t
}

// Len returns the number of interned types.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types) - 1
}

// Prim interns a primitive.
func (in *Interner) Prim(p Prim) ConTyID {
	return in.Intern(ConTy{Kind: ConPrim, Prim: p})
}

func conKey(t *ConTy) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(t.Kind)))
	sb.WriteByte(':')
	switch t.Kind {
	case ConPrim:
		sb.WriteString(strconv.Itoa(int(t.Prim)))
	case ConList:
		writeID(&sb, t.Elem)
	case ConFunc:
		writeID(&sb, t.In)
		sb.WriteByte('>')
		writeID(&sb, t.Out)
	case ConData:
		sb.WriteString(strconv.FormatUint(uint64(t.Data), 10))
	case ConEffect:
		sb.WriteString(strconv.FormatUint(uint64(t.Effect), 10))
		sb.WriteByte('~')
		writeID(&sb, t.Elem)
	case ConRecord:
		for _, f := range t.Fields {
			sb.WriteString(strconv.Quote(f.Name))
			sb.WriteByte('=')
			writeID(&sb, f.Ty)
			sb.WriteByte(',')
		}
	}
	for _, it := range t.Items {
		sb.WriteByte('#')
		writeID(&sb, it)
	}
	return sb.String()
}

func writeID(sb *strings.Builder, id ConTyID) {
	sb.WriteString(strconv.FormatUint(uint64(id), 10))
}

// Display renders a concrete type.
func (in *Interner) Display(id ConTyID, names Names) string {
	var sb strings.Builder
	in.display(&sb, id, names, false)
	return sb.String()
}

func (in *Interner) display(sb *strings.Builder, id ConTyID, names Names, nested bool) {
	t, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch t.Kind {
	case ConPrim:
		sb.WriteString(t.Prim.String())
	case ConList:
		sb.WriteByte('[')
		in.display(sb, t.Elem, names, false)
		sb.WriteByte(']')
	case ConTuple:
		sb.WriteByte('(')
		for i, it := range t.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.display(sb, it, names, false)
		}
		if len(t.Items) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case ConRecord:
		sb.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			in.display(sb, f.Ty, names, false)
		}
		sb.WriteByte('}')
	case ConFunc:
		if nested {
			sb.WriteByte('(')
		}
		in.display(sb, t.In, names, true)
		sb.WriteString(" -> ")
		in.display(sb, t.Out, names, false)
		if nested {
			sb.WriteByte(')')
		}
	case ConData, ConEffect:
		wrap := nested && (len(t.Items) > 0 || t.Kind == ConEffect)
		if wrap {
			sb.WriteByte('(')
		}
		switch {
		case names == nil:
			sb.WriteString(t.Kind.String())
		case t.Kind == ConData:
			sb.WriteString(names.DataName(t.Data))
		default:
			sb.WriteString(names.EffectName(t.Effect))
		}
		for _, a := range t.Items {
			sb.WriteByte(' ')
			in.display(sb, a, names, true)
		}
		if t.Kind == ConEffect {
			sb.WriteString(" ~ ")
			in.display(sb, t.Elem, names, true)
		}
		if wrap {
			sb.WriteByte(')')
		}
	}
}
