package diag

import "sort"

// Bag accumulates diagnostics up to a cap, so a pathological stream
// cannot grow the bag without limit.
type Bag struct {
	items []Diagnostic
	max   uint32
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = 1000
	}
	return &Bag{items: make([]Diagnostic, 0, 16), max: uint32(max)}
}

// Add appends d, returning false if the bag is already at capacity.
func (b *Bag) Add(d Diagnostic) bool {
	if uint32(len(b.items)) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Items returns the accumulated diagnostics. Callers must not mutate the
// returned slice; it aliases the bag's backing array.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by zone, then time, then descending severity,
// for deterministic SOURCE_ERROR reporting order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.At.Zone != dj.At.Zone {
			return di.At.Zone < dj.At.Zone
		}
		if di.At.Time != dj.At.Time {
			return di.At.Time < dj.At.Time
		}
		return di.Severity > dj.Severity
	})
}

// Clear empties the bag without shrinking its backing array.
func (b *Bag) Clear() {
	b.items = b.items[:0]
}
