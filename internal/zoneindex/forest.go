package zoneindex

import (
	"fmt"

	"fortio.org/safecast"

	"tracedb/internal/diag"
	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// rebuildForest discards the entire scope arena and replays every event
// from scratch in current sorted order. Existing model.ScopeID values
// handed out before a dirty batch are invalidated by this -- callers
// that hold onto a ScopeID across an ingest call must re-resolve it
// afterward.
func (ix *Index) rebuildForest() {
	ix.scopes = ix.scopes[:1] // keep the unused sentinel at index 0
	ix.roots = ix.roots[:0]
	ix.stack = ix.stack[:0]
	ix.enterByEventIdx = make(map[int]model.ScopeID, len(ix.events))
	ix.processed = 0
	ix.foldRange(0, len(ix.events))
}

// foldRange folds events[from:to] into the scope forest in order,
// advancing ix.processed. Both the incremental (non-dirty) and full
// rebuild paths share this.
func (ix *Index) foldRange(from, to int) {
	for i := from; i < to; i++ {
		ix.foldOne(i)
	}
	ix.processed = to
}

func (ix *Index) foldOne(i int) {
	e := &ix.events[i]
	t := ix.reg.Get(e.Type)
	if t == nil {
		return
	}
	switch {
	case t.Flags.Has(schema.FlagScopeEnter):
		ix.foldEnter(i, e, t)
	case t.Flags.Has(schema.FlagScopeLeave):
		ix.foldLeave(i, e)
	}
}

func (ix *Index) foldEnter(i int, e *model.Event, t *schema.Type) {
	name := ""
	if v, ok := e.Arg(ix.reg, "name"); ok {
		name = v.S
	}
	var parent model.ScopeID
	var depth uint32
	if len(ix.stack) > 0 {
		parent = ix.stack[len(ix.stack)-1]
		depth = ix.scopes[parent].depth + 1
	}
	value, err := safecast.Conv[uint32](len(ix.scopes))
	if err != nil {
		panic(fmt.Errorf("zoneindex: scope arena overflow: %w", err))
	}
	id := model.ScopeID(value)
	ix.scopes = append(ix.scopes, scopeRec{
		zone:     ix.zone,
		parent:   parent,
		depth:    depth,
		name:     name,
		enterIdx: i,
		leaveIdx: -1,
	})
	if parent.IsValid() {
		ix.scopes[parent].children = append(ix.scopes[parent].children, id)
	} else {
		ix.roots = append(ix.roots, id)
	}
	ix.stack = append(ix.stack, id)
	ix.enterByEventIdx[i] = id
}

func (ix *Index) foldLeave(i int, e *model.Event) {
	if len(ix.stack) == 0 {
		ix.report.Report(diag.NewError(diag.UnmatchedScopeLeave,
			diag.Locus{Zone: ix.zoneName, Time: e.Time},
			"scope leave with no open scope on the stack"))
		return
	}
	top := ix.stack[len(ix.stack)-1]
	rec := &ix.scopes[top]
	if e.Time < ix.events[rec.enterIdx].Time {
		ix.report.Report(diag.NewError(diag.UnmatchedScopeLeave,
			diag.Locus{Zone: ix.zoneName, Time: e.Time},
			"scope leave precedes its matched enter, dropped"))
		return
	}
	ix.stack = ix.stack[:len(ix.stack)-1]
	rec.leaveIdx = i
	rec.totalDurationUS = e.Time - ix.events[rec.enterIdx].Time
	rec.hasTotalDuration = true

	var childTotal int64
	allChildrenClosed := true
	for _, c := range rec.children {
		cr := &ix.scopes[c]
		if !cr.hasTotalDuration {
			allChildrenClosed = false
			break
		}
		childTotal += cr.totalDurationUS
	}
	if allChildrenClosed {
		rec.userDurationUS = rec.totalDurationUS - childTotal
		rec.hasUserDuration = true
	}
}
