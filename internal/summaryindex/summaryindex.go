// Package summaryindex implements the single, database-wide SummaryIndex:
// first/last seen time, total event count, and a power-of-two time-bucket
// histogram used to render an overview without walking every zone.
package summaryindex

import "tracedb/internal/model"

// BucketCount is the number of power-of-two time buckets tracked. Bucket
// i covers event counts observed in [2^i, 2^(i+1)) microseconds since
// the database's first event; bucket 0 covers [0, 2), and the last
// bucket also takes every delta beyond its own range.
const BucketCount = 48

// bucket tracks {count, approximateDuration} for one power-of-two time
// range. approximateDuration is the span between the earliest and latest
// absolute event time that landed in this bucket -- coarse by design,
// good enough for an overview render.
type bucket struct {
	count    uint64
	firstAbs int64
	lastAbs  int64
	hasAny   bool
}

// Index is the database-wide summary view.
type Index struct {
	firstTime int64
	lastTime  int64
	hasAny    bool
	count     uint64
	buckets   [BucketCount]bucket

	inserting bool
}

// New creates an empty summary index.
func New() *Index { return &Index{} }

// BeginInserting enters the mutable phase for one ingest batch.
func (ix *Index) BeginInserting() { ix.inserting = true }

// InsertEvent folds e into the running first/last/count/bucket state.
// The summary index takes every event regardless of zone or name.
func (ix *Index) InsertEvent(e model.Event) {
	if !ix.inserting {
		panic("summaryindex: InsertEvent called outside a batch")
	}
	if !ix.hasAny {
		ix.firstTime, ix.lastTime, ix.hasAny = e.Time, e.Time, true
	} else {
		if e.Time < ix.firstTime {
			ix.firstTime = e.Time
		}
		if e.Time > ix.lastTime {
			ix.lastTime = e.Time
		}
	}
	ix.count++
	b := &ix.buckets[bucketFor(e.Time-ix.firstTime)]
	if !b.hasAny {
		b.firstAbs, b.lastAbs, b.hasAny = e.Time, e.Time, true
	} else {
		if e.Time < b.firstAbs {
			b.firstAbs = e.Time
		}
		if e.Time > b.lastAbs {
			b.lastAbs = e.Time
		}
	}
	b.count++
}

// EndInserting leaves the mutable phase. The summary never needs to
// re-sort: its state is a set of running totals, not an ordered list.
func (ix *Index) EndInserting() { ix.inserting = false }

func bucketFor(deltaUS int64) int {
	if deltaUS <= 0 {
		return 0
	}
	b := 0
	for v := deltaUS; v > 1 && b < BucketCount-1; v >>= 1 {
		b++
	}
	return b
}

// TimeRange reports the earliest/latest event time seen, or
// (0, 0, false) if nothing has been ingested yet.
func (ix *Index) TimeRange() (first, last int64, ok bool) {
	return ix.firstTime, ix.lastTime, ix.hasAny
}

// Count returns the total number of events ingested across every zone.
func (ix *Index) Count() uint64 { return ix.count }

// Bucket reports the number of events whose time, relative to the
// database's first event, fell in bucket i's power-of-two range.
func (ix *Index) Bucket(i int) uint64 {
	if i < 0 || i >= BucketCount {
		return 0
	}
	return ix.buckets[i].count
}

// ApproxDuration reports bucket i's approximate duration: the span
// between the earliest and latest event time observed in it.
func (ix *Index) ApproxDuration(i int) int64 {
	if i < 0 || i >= BucketCount || !ix.buckets[i].hasAny {
		return 0
	}
	return ix.buckets[i].lastAbs - ix.buckets[i].firstAbs
}

// ForEach iterates every non-empty bucket whose absolute event range
// overlaps [tStart, tEnd), in bucket order, reporting its count and
// approximate duration.
func (ix *Index) ForEach(tStart, tEnd int64, fn func(i int, count uint64, approxDurationUS int64)) {
	for i := range ix.buckets {
		b := &ix.buckets[i]
		if !b.hasAny {
			continue
		}
		if b.lastAbs < tStart || b.firstAbs >= tEnd {
			continue
		}
		fn(i, b.count, b.lastAbs-b.firstAbs)
	}
}
