// Package eventindex implements the per-event-name secondary index: a
// time-ordered list of every event whose type name matches exactly one
// string, maintained through the same batch-aware
// BeginInserting/EndInserting protocol ZoneIndex and SummaryIndex
// implement.
package eventindex

import (
	"sort"

	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// Index is a time-ordered sequence of events for one event-type name.
type Index struct {
	name string
	reg  *schema.Registry

	events    []model.Event
	dirty     bool
	inserting bool
	insSeq    uint64

	// backfilled records whether this index was created before or after
	// ingest began. A late-created index starts empty and is never
	// retroactively populated; this field only documents the choice for
	// introspection/tests, it does not change behavior.
	backfilled bool
}

// New creates an index for name. createdDuringIngest should be true when
// the index is created via CreateEventIndex mid-stream (after at least
// one batch has already completed), so the chosen empty-until-next-ingest
// policy is visible to callers/tests.
func New(name string, reg *schema.Registry, createdDuringIngest bool) *Index {
	return &Index{name: name, reg: reg, events: make([]model.Event, 0, 16), backfilled: !createdDuringIngest}
}

func (ix *Index) Name() string { return ix.name }

// WasBackfilled reports true for an index created before ingest began
// (New with createdDuringIngest false) and false for one created
// mid-stream. No index is ever populated from history: a mid-stream
// index only sees events from the batches that follow its creation.
func (ix *Index) WasBackfilled() bool { return ix.backfilled }

// BeginInserting enters the mutable phase for one ingest batch.
func (ix *Index) BeginInserting() {
	ix.inserting = true
}

// InsertEvent appends e to the index if its type name matches. The
// listener fans every event out to every target; a per-name index
// ignores anything whose type doesn't match its own name. Out-of-order
// arrivals that do match are tolerated; the index is marked dirty so
// EndInserting re-sorts.
func (ix *Index) InsertEvent(e model.Event) {
	if !ix.inserting {
		panic("eventindex: InsertEvent called outside a batch")
	}
	if t := ix.reg.Get(e.Type); t == nil || t.Name != ix.name {
		return
	}
	e.SetInsertionSeq(ix.insSeq)
	ix.insSeq++
	if n := len(ix.events); n > 0 && e.Time < ix.events[n-1].Time {
		ix.dirty = true
	}
	ix.events = append(ix.events, e)
}

// EndInserting stably sorts by (time, insertion order) if any event
// arrived out of order, then leaves the mutable phase.
func (ix *Index) EndInserting() {
	if ix.dirty {
		sort.SliceStable(ix.events, func(i, j int) bool {
			return model.Less(&ix.events[i], &ix.events[j])
		})
		ix.dirty = false
	}
	ix.inserting = false
}

// Count returns the number of indexed events.
func (ix *Index) Count() int { return len(ix.events) }

// ForEach iterates events in [tStart, tEnd) order, using a binary search
// for the lower bound.
func (ix *Index) ForEach(tStart, tEnd int64, fn func(*model.Event)) {
	lo := sort.Search(len(ix.events), func(i int) bool {
		return ix.events[i].Time >= tStart
	})
	for i := lo; i < len(ix.events) && ix.events[i].Time < tEnd; i++ {
		fn(&ix.events[i])
	}
}

// Events returns the indexed events in current (possibly not yet
// repositioned) order. Position on these copies reflects whatever the
// owning zone index last stamped into the fanned-out event and may be
// stale relative to the zone's own authoritative copy -- callers that
// need position-accurate results use the zone index directly.
func (ix *Index) Events() []model.Event { return ix.events }
