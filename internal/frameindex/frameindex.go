// Package frameindex pairs a zone's top-level scopes into an ordered
// sequence of frames -- one per outermost enter/leave pair, e.g. one
// per render tick or request in a zone that nests all of its work under
// a single root scope per unit of work. The frame slice is built once
// per batch and read back by position or by range, with no secondary
// structure of its own.
package frameindex

import (
	"sort"

	"tracedb/internal/model"
)

// Frame is one top-level scope in a zone, addressed by its position in
// arrival order rather than by ScopeID, since frame numbers are meant to
// be stable labels ("frame 41") independent of the zone's internal arena
// layout.
type Frame struct {
	Index     int
	Scope     model.ScopeID
	StartTime int64
	EndTime   int64
	HasEnd    bool
}

func (f Frame) contains(t int64) bool {
	if t < f.StartTime {
		return false
	}
	if !f.HasEnd {
		return true
	}
	return t < f.EndTime
}

// Index is one zone's frame sequence.
type Index struct {
	frames []Frame
}

// zoneView is the subset of zoneindex.Index frameindex needs. Depending
// on a narrow interface rather than the concrete type keeps this package
// free to be exercised from tests with a fake.
type zoneView interface {
	GetRootScopes() []model.ScopeID
	Scope(id model.ScopeID) (model.Scope, bool)
}

// Build derives a zone's frame sequence from its current root scopes.
// Root scopes are already in enter order (zoneindex appends to roots as
// it folds events forward), so no extra sort is needed here.
func Build(zi zoneView) *Index {
	roots := zi.GetRootScopes()
	frames := make([]Frame, 0, len(roots))
	for i, id := range roots {
		sc, ok := zi.Scope(id)
		if !ok {
			continue
		}
		f := Frame{Index: i, Scope: id, StartTime: sc.Enter.Time}
		if sc.HasLeave {
			f.EndTime = sc.Leave.Time
			f.HasEnd = true
		}
		frames = append(frames, f)
	}
	return &Index{frames: frames}
}

// Count returns the number of frames.
func (ix *Index) Count() int { return len(ix.frames) }

// At returns the frame at position i, or false if out of range.
func (ix *Index) At(i int) (Frame, bool) {
	if i < 0 || i >= len(ix.frames) {
		return Frame{}, false
	}
	return ix.frames[i], true
}

// GetFrameInRange returns every frame overlapping [tStart, tEnd).
func (ix *Index) GetFrameInRange(tStart, tEnd int64) []Frame {
	lo := sort.Search(len(ix.frames), func(i int) bool {
		return !ix.frames[i].HasEnd || ix.frames[i].EndTime > tStart
	})
	var out []Frame
	for i := lo; i < len(ix.frames) && ix.frames[i].StartTime < tEnd; i++ {
		out = append(out, ix.frames[i])
	}
	return out
}

// FrameAt returns the frame containing time t, if any.
func (ix *Index) FrameAt(t int64) (Frame, bool) {
	for _, f := range ix.frames {
		if f.contains(t) {
			return f, true
		}
	}
	return Frame{}, false
}
