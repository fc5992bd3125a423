package diag

import (
	"sort"
	"sync"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit. It is safe for concurrent use.
type Bag struct {
	mu      sync.Mutex
	items   []Diagnostic
	max     uint16
	dropped int
}

// NewBag creates a bag; max <= 0 or above the uint16 range means "as many as fit in uint16".
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil || max <= 0 {
		limit = ^uint16(0)
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(limit), 64)),
		max:   limit,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// HasErrors returns true if at least one diagnostic has Severity >= Error.
// Dropped diagnostics count: the limit only caps output.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dropped > 0 {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items
}

// Merge appends every diagnostic of other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	items := other.Items()
	b.mu.Lock()
	defer b.mu.Unlock()
	if total := len(b.items) + len(items); total > int(b.max) {
		if n, err := safecast.Conv[uint16](total); err == nil {
			b.max = n
		} else {
			b.max = ^uint16(0)
		}
	}
	for _, d := range items {
		if len(b.items) >= int(b.max) {
			b.dropped++
			continue
		}
		b.items = append(b.items, d)
	}
}

// Sort orders by file, start, end, severity (desc), code (asc)
// so output is deterministic.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary != dj.Primary {
			return di.Primary.Less(dj.Primary)
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

type dedupKey struct {
	code Code
	span [3]uint32
	msg  string
}

func keyOf(d *Diagnostic) dedupKey {
	return dedupKey{
		code: d.Code,
		span: [3]uint32{uint32(d.Primary.File), d.Primary.Start, d.Primary.End},
		msg:  d.Message,
	}
}

// Dedup drops diagnostics repeating an earlier code, span and message.
func (b *Bag) Dedup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[dedupKey]struct{}, len(b.items))
	out := b.items[:0]
	for i := range b.items {
		k := keyOf(&b.items[i])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, b.items[i])
	}
	b.items = out
}
