package mono

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"tao/internal/types"
)

// ExportedType is one interned type with its id.
type ExportedType struct {
	ID types.ConTyID `json:"id"`
	Ty types.ConTy   `json:"ty"`
}

// Exported is the on-disk form of a concretized program, for a backend
// living in another process.
type Exported struct {
	Entry Key            `json:"entry"`
	Types []ExportedType `json:"types"`
	Defs  []*Def         `json:"defs"`
}

// Exported snapshots prog: types in id order, definitions in key order.
func (p *Program) Exported() *Exported {
	n := p.Types.Len()
	out := &Exported{
		Entry: p.Entry,
		Types: make([]ExportedType, 0, n),
		Defs:  make([]*Def, 0, len(p.Defs)),
	}
	for i := 1; i <= n; i++ {
		id := types.ConTyID(i) // #nosec G115 -- bounded by Len
		out.Types = append(out.Types, ExportedType{ID: id, Ty: p.Types.MustLookup(id)})
	}
	for _, k := range p.SortedKeys() {
		out.Defs = append(out.Defs, p.Defs[k])
	}
	return out
}

// Export writes prog as msgpack.
func Export(w io.Writer, prog *Program) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	enc.SetOmitEmpty(true)
	if err := enc.Encode(prog.Exported()); err != nil {
		return fmt.Errorf("mono: encode: %w", err)
	}
	return nil
}

// ReadExport decodes what Export wrote.
func ReadExport(r io.Reader) (*Exported, error) {
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	dec.SetCustomStructTag("json")
	var out Exported
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("mono: decode: %w", err)
	}
	return &out, nil
}
