// Package zoneindex reconstructs a scope-nesting forest from one zone's
// flat enter/leave event stream, including arrivals that are out of
// order within or across batches.
//
// Scope storage is a slab arena indexed by model.ScopeID: a compact
// append-only slice with index 0 reserved as "no scope", parent stored
// as a back-reference id rather than a pointer, and children accumulated
// on the parent as the arena grows.
package zoneindex

import (
	"sort"

	"tracedb/internal/diag"
	"tracedb/internal/metrics"
	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// DefaultMaxRebuildWindow bounds how many events a dirty EndInserting may
// touch before the cap is treated as exceeded and a warning is raised.
const DefaultMaxRebuildWindow = 4096

// scopeRec is the arena-resident scope record. Unlike model.Scope (the
// value returned to callers), it keeps indices into the zone's own event
// slice instead of copies, so a scope's reported Enter/Leave always
// reflect the event's *current* Position even after a later renumber
// pass rewrites it -- copying the Event out at scope-build time would go
// stale as soon as renumber runs.
type scopeRec struct {
	zone     model.ZoneID
	parent   model.ScopeID
	depth    uint32
	name     string
	enterIdx int
	leaveIdx int // -1 until matched

	children []model.ScopeID

	totalDurationUS  int64
	hasTotalDuration bool
	userDurationUS   int64
	hasUserDuration  bool
}

// Index owns one zone's ordered event list and the scope forest derived
// from it.
type Index struct {
	zone     model.ZoneID
	zoneName string
	reg      *schema.Registry
	report   diag.Reporter

	maxRebuildWindow int

	events    []model.Event
	dirty     bool
	inserting bool
	seq       uint64

	// processed is how many leading events (in current sorted order)
	// have already been folded into the scope forest. On the fast,
	// non-dirty path only events[processed:] need folding.
	processed int

	scopes []scopeRec // index 0 unused (NoScopeID sentinel)
	roots  []model.ScopeID
	stack  []model.ScopeID

	// enterByEventIdx maps an events[] index holding a SCOPE_ENTER to the
	// scope it opened, so the query engine's filter path can resolve one without a linear scan.
	enterByEventIdx map[int]model.ScopeID
}

// New creates an empty zone index.
func New(zone model.ZoneID, zoneName string, reg *schema.Registry, report diag.Reporter) *Index {
	if report == nil {
		report = diag.Nop
	}
	return &Index{
		zone:             zone,
		zoneName:         zoneName,
		reg:              reg,
		report:           report,
		maxRebuildWindow: DefaultMaxRebuildWindow,
		events:           make([]model.Event, 0, 64),
		scopes:           make([]scopeRec, 1, 64), // scopes[0] unused
		enterByEventIdx:  make(map[int]model.ScopeID, 64),
	}
}

func (ix *Index) Zone() model.ZoneID { return ix.zone }

// SetMaxRebuildWindow overrides the rebuild-window warning threshold.
func (ix *Index) SetMaxRebuildWindow(n int) {
	if n > 0 {
		ix.maxRebuildWindow = n
	}
}

// BeginInserting enters the mutable phase for one ingest batch.
func (ix *Index) BeginInserting() { ix.inserting = true }

// InsertEvent appends e to the zone's event list. The listener fans
// every event out to every zone index; an index ignores
// anything that isn't stamped with its own zone.
func (ix *Index) InsertEvent(e model.Event) {
	if !ix.inserting {
		panic("zoneindex: InsertEvent called outside a batch")
	}
	if e.Zone != ix.zone {
		return
	}
	e.SetInsertionSeq(ix.seq)
	ix.seq++
	if n := len(ix.events); n > 0 && e.Time < ix.events[n-1].Time {
		ix.dirty = true
	}
	ix.events = append(ix.events, e)
}

// EndInserting re-sorts the event list if it went dirty this batch, then
// folds every unprocessed event into the scope forest.
func (ix *Index) EndInserting() {
	if ix.dirty {
		sort.SliceStable(ix.events, func(i, j int) bool {
			return model.Less(&ix.events[i], &ix.events[j])
		})

		// A dirty batch always rebuilds the full forest rather than
		// computing a minimal rewind point. MaxRebuildWindow is a
		// diagnostic threshold only: a dirty batch touching more than
		// the cap's worth of history is still handled correctly, just
		// flagged.
		if len(ix.events) > ix.maxRebuildWindow {
			metrics.RebuildWindowWidened.Inc()
			ix.report.Report(diag.NewWarning(diag.RebuildWindowExceeded,
				diag.Locus{Zone: ix.zoneName},
				"out-of-order insert forced a full scope-forest rebuild beyond the configured window"))
		}
		ix.rebuildForest()
		ix.dirty = false
		return
	}
	ix.foldRange(ix.processed, len(ix.events))
}

// Count returns the number of indexed events.
func (ix *Index) Count() int { return len(ix.events) }

// ForEach iterates events in [tStart, tEnd) time order.
func (ix *Index) ForEach(tStart, tEnd int64, fn func(*model.Event)) {
	ix.ForEachIndexed(tStart, tEnd, func(_ int, e *model.Event) { fn(e) })
}

// ForEachIndexed is ForEach but also passes each event's position in
// the zone's internal slice, for callers (the query engine) that need
// to resolve an event back to the scope it opened via
// ScopeForEventIndex.
func (ix *Index) ForEachIndexed(tStart, tEnd int64, fn func(i int, e *model.Event)) {
	lo := sort.Search(len(ix.events), func(i int) bool {
		return ix.events[i].Time >= tStart
	})
	for i := lo; i < len(ix.events) && ix.events[i].Time < tEnd; i++ {
		fn(i, &ix.events[i])
	}
}

// ScopeForEventIndex returns the scope opened by events[i], if events[i]
// is a SCOPE_ENTER.
func (ix *Index) ScopeForEventIndex(i int) (model.Scope, bool) {
	id, ok := ix.enterByEventIdx[i]
	if !ok {
		return model.Scope{}, false
	}
	return ix.materialize(id), true
}

// Events exposes the zone's events in current sorted order, used by
// frameindex.Build and the query engine's tree-expression walk.
func (ix *Index) Events() []model.Event { return ix.events }

// Renumber assigns dense positions in time order starting from
// startPosition and returns the next free position.
func (ix *Index) Renumber(startPosition model.Position) model.Position {
	pos := startPosition
	for i := range ix.events {
		ix.events[i].Position = pos
		pos++
	}
	return pos
}

// GetRootScopes returns the zone's top-level scopes.
func (ix *Index) GetRootScopes() []model.ScopeID {
	out := make([]model.ScopeID, len(ix.roots))
	copy(out, ix.roots)
	return out
}

// Scope materializes the public value for id, or false if id is not
// valid in this zone's arena.
func (ix *Index) Scope(id model.ScopeID) (model.Scope, bool) {
	if !id.IsValid() || int(id) >= len(ix.scopes) {
		return model.Scope{}, false
	}
	return ix.materialize(id), true
}

// GetScopeAt returns the innermost scope whose [enter,leave) window
// contains t, or NoScopeID if none does.
func (ix *Index) GetScopeAt(t int64) model.ScopeID {
	var best model.ScopeID
	var bestDepth uint32
	var walk func(id model.ScopeID)
	walk = func(id model.ScopeID) {
		rec := &ix.scopes[id]
		if !ix.contains(rec, t) {
			return
		}
		if !best.IsValid() || rec.depth >= bestDepth {
			best, bestDepth = id, rec.depth
		}
		for _, c := range rec.children {
			walk(c)
		}
	}
	for _, r := range ix.roots {
		walk(r)
	}
	return best
}

func (ix *Index) contains(rec *scopeRec, t int64) bool {
	enter := ix.events[rec.enterIdx]
	if t < enter.Time {
		return false
	}
	if rec.leaveIdx < 0 {
		return true
	}
	return t < ix.events[rec.leaveIdx].Time
}

func (ix *Index) materialize(id model.ScopeID) model.Scope {
	rec := &ix.scopes[id]
	s := model.Scope{
		ID:               id,
		Zone:             rec.zone,
		Parent:           rec.parent,
		Depth:            rec.depth,
		Name:             rec.name,
		Enter:            ix.events[rec.enterIdx],
		Children:         append([]model.ScopeID(nil), rec.children...),
		TotalDurationUS:  rec.totalDurationUS,
		HasTotalDuration: rec.hasTotalDuration,
		UserDurationUS:   rec.userDurationUS,
		HasUserDuration:  rec.hasUserDuration,
	}
	if rec.leaveIdx >= 0 {
		s.Leave = ix.events[rec.leaveIdx]
		s.HasLeave = true
	}
	return s
}
