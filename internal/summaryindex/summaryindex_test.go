package summaryindex_test

import (
	"testing"

	"tracedb/internal/model"
	"tracedb/internal/schema"
	"tracedb/internal/summaryindex"
)

func ev(t int64) model.Event { return model.NewEvent(1, t, schema.TypeID(1), nil) }

// TestFirstLastCountTrackRunningTotals checks the first/last/count running
// totals a batch of arbitrary-order inserts folds into.
func TestFirstLastCountTrackRunningTotals(t *testing.T) {
	ix := summaryindex.New()
	ix.BeginInserting()
	ix.InsertEvent(ev(50))
	ix.InsertEvent(ev(10))
	ix.InsertEvent(ev(30))
	ix.EndInserting()

	first, last, ok := ix.TimeRange()
	if !ok {
		t.Fatalf("expected TimeRange to report ok after inserts")
	}
	if first != 10 || last != 50 {
		t.Fatalf("expected [10,50], got [%d,%d]", first, last)
	}
	if ix.Count() != 3 {
		t.Fatalf("expected count 3, got %d", ix.Count())
	}
}

// TestEmptyIndexReportsNotOK checks the zero-value/no-events-yet case.
func TestEmptyIndexReportsNotOK(t *testing.T) {
	ix := summaryindex.New()
	if _, _, ok := ix.TimeRange(); ok {
		t.Fatalf("expected TimeRange to report !ok on an empty index")
	}
}

// TestForEachSkipsBucketsOutsideRange checks the time-range overlap test
// used by forEach over buckets.
func TestForEachSkipsBucketsOutsideRange(t *testing.T) {
	ix := summaryindex.New()
	ix.BeginInserting()
	ix.InsertEvent(ev(0))
	ix.InsertEvent(ev(1000))
	ix.EndInserting()

	// Only the bucket holding time 0 overlaps [0,1); the bucket holding
	// time 1000 (delta 1000 from first=0) must not be reported.
	var narrow uint64
	ix.ForEach(0, 1, func(i int, count uint64, approxDurationUS int64) {
		narrow += count
	})
	if narrow != 1 {
		t.Fatalf("expected only the first bucket's event in [0,1), got count %d", narrow)
	}
	var total uint64
	ix.ForEach(0, 1001, func(i int, count uint64, approxDurationUS int64) { total += count })
	if total != 2 {
		t.Fatalf("expected total count across overlapping buckets to be 2, got %d", total)
	}
}

// TestInsertOutsideBatchPanics pins fail-fast on a contract violation.
func TestInsertOutsideBatchPanics(t *testing.T) {
	ix := summaryindex.New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected InsertEvent outside a batch to panic")
		}
	}()
	ix.InsertEvent(ev(10))
}
