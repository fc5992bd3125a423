package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores registry entries with 1-based ids; 0 is never a valid id.
type Arena[T any] struct {
	data []T
}

// NewArena creates an arena whose storage has capacity capHint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		data: make([]T, 0, capHint),
	}
}

// Allocate возвращает индекс нового элемента (1-based).
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("symbols: arena overflow: %w", err))
	}
	return n
}

// Get returns the entry for index or nil when index is 0 or out of range.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// Len returns the number of entries; valid ids are 1..Len.
func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data)) // #nosec G115 -- bounded by Allocate
}
