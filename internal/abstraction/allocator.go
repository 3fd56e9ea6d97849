package abstraction

import (
	"strconv"

	"github.com/vk/patchc/internal/pd"
)

// IDAllocator hands out patch and array ids. Ids are never reused.
type IDAllocator struct {
	next int
}

// NewIDAllocator returns an allocator whose first id is start.
func NewIDAllocator(start int) *IDAllocator {
	return &IDAllocator{next: start}
}

// AllocatorAfter returns an allocator starting past the largest numeric
// patch or array id of doc.
func AllocatorAfter(doc *pd.Pd) *IDAllocator {
	start := 0
	bump := func(id string) {
		if n, err := strconv.Atoi(id); err == nil && n >= start {
			start = n + 1
		}
	}
	for id := range doc.Patches {
		bump(id)
	}
	for id := range doc.Arrays {
		bump(id)
	}
	return NewIDAllocator(start)
}

// Next returns a fresh id.
func (a *IDAllocator) Next() string {
	id := strconv.Itoa(a.next)
	a.next++
	return id
}
