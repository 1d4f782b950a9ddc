package ingest_test

import (
	"testing"

	"tracedb/internal/events"
	"tracedb/internal/ingest"
	"tracedb/internal/schema"
)

// TestZoneCreatedMidBatchIsFullyPopulated covers a zone discovered partway
// through a batch: it must still receive every event addressed to it
// within that same batch, and must be announced via ZONES_ADDED once the
// batch ends.
func TestZoneCreatedMidBatchIsFullyPopulated(t *testing.T) {
	reg := schema.NewRegistry()
	bus := events.New()

	var zonesAdded []events.Event
	bus.Subscribe(func(e events.Event) {
		if e.Kind == events.ZonesAdded {
			zonesAdded = append(zonesAdded, e)
		}
	})

	l := ingest.New(reg, bus)
	l.SourceAdded("s", 0)

	l.BeginEventBatch()
	z1 := l.EnsureZone(0, "Z1", "thread", "host1")
	l.TraceEvent(z1, 10, schema.NameScopeEnter, []schema.Value{schema.StringValue("A")})
	// Z2 is discovered mid-batch, after Z1 already has events.
	z2 := l.EnsureZone(15, "Z2", "thread", "host1")
	l.TraceEvent(z2, 20, schema.NameScopeEnter, []schema.Value{schema.StringValue("X")})
	l.TraceEvent(z1, 30, schema.NameScopeLeave, nil)
	l.TraceEvent(z2, 40, schema.NameScopeLeave, nil)
	l.EndEventBatch()

	zi2, ok := l.ZoneIndex(z2)
	if !ok {
		t.Fatalf("expected zone index for Z2")
	}
	// zone#create + enter + leave == 3 events for Z2, despite it being
	// created partway through the batch.
	if zi2.Count() != 3 {
		t.Fatalf("Z2 event count = %d, want 3", zi2.Count())
	}
	if len(zonesAdded) != 1 || len(zonesAdded[0].Zones) != 2 {
		t.Fatalf("expected one ZONES_ADDED with 2 zones, got %+v", zonesAdded)
	}
}

// TestRenumberProducesDenseGlobalPositions checks that at endBatch, every
// event across every zone gets a dense, contiguous, database-wide
// position with no gaps or duplicates, in zone-creation order.
func TestRenumberProducesDenseGlobalPositions(t *testing.T) {
	reg := schema.NewRegistry()
	l := ingest.New(reg, nil)
	l.SourceAdded("s", 0)

	l.BeginEventBatch()
	z1 := l.EnsureZone(0, "Z1", "thread", "host1")
	z2 := l.EnsureZone(0, "Z2", "thread", "host1")
	l.TraceEvent(z1, 10, schema.NameScopeEnter, []schema.Value{schema.StringValue("A")})
	l.TraceEvent(z1, 20, schema.NameScopeLeave, nil)
	l.TraceEvent(z2, 10, schema.NameScopeEnter, []schema.Value{schema.StringValue("X")})
	l.TraceEvent(z2, 20, schema.NameScopeLeave, nil)
	l.EndEventBatch()

	seen := make(map[uint64]bool)
	var total int
	for _, zi := range l.ZoneIndices() {
		total += zi.Count()
	}
	positions := make([]uint64, 0, total)
	for _, zi := range l.ZoneIndices() {
		for _, e := range zi.Events() {
			positions = append(positions, uint64(e.Position))
		}
	}
	for _, p := range positions {
		if p == 0 {
			t.Fatalf("expected no zero (unassigned) position, got one")
		}
		if seen[p] {
			t.Fatalf("duplicate position %d", p)
		}
		seen[p] = true
	}
	if len(seen) != total {
		t.Fatalf("expected %d distinct positions, got %d", total, len(seen))
	}
	for p := uint64(1); p <= uint64(total); p++ {
		if !seen[p] {
			t.Fatalf("gap in dense position space at %d", p)
		}
	}
}

// TestCreateEventIndexNeverBackfills checks that an event index created
// after at least one batch has already completed starts empty and is
// never retroactively populated from history, and that a second
// CreateEventIndex call for the same name is idempotent.
func TestCreateEventIndexNeverBackfills(t *testing.T) {
	reg := schema.NewRegistry()
	l := ingest.New(reg, nil)
	l.SourceAdded("s", 0)

	l.BeginEventBatch()
	z := l.EnsureZone(0, "Z", "thread", "host1")
	l.TraceEvent(z, 10, schema.NameScopeEnter, []schema.Value{schema.StringValue("A")})
	l.TraceEvent(z, 20, schema.NameScopeLeave, nil)
	l.EndEventBatch()

	ix := l.CreateEventIndex(schema.NameScopeEnter)
	if ix.WasBackfilled() {
		t.Fatalf("expected a mid-run index to report WasBackfilled() == false")
	}
	if ix.Count() != 0 {
		t.Fatalf("expected a freshly created index to start empty, got %d", ix.Count())
	}

	again := l.CreateEventIndex(schema.NameScopeEnter)
	if again != ix {
		t.Fatalf("expected a second CreateEventIndex call to return the same index")
	}
}

// TestTotalEventCountExcludesInternalAndLeave checks that internal and
// scope-leave events never count toward the user-facing total.
func TestTotalEventCountExcludesInternalAndLeave(t *testing.T) {
	reg := schema.NewRegistry()
	l := ingest.New(reg, nil)
	l.SourceAdded("s", 0)

	l.BeginEventBatch()
	z := l.EnsureZone(0, "Z", "thread", "host1") // zone#create: FlagInternal
	l.TraceEvent(z, 10, schema.NameScopeEnter, []schema.Value{schema.StringValue("A")})
	l.TraceEvent(z, 20, schema.NameScopeLeave, nil) // FlagScopeLeave
	l.EndEventBatch()

	if l.TotalEventCount() != 1 {
		t.Fatalf("TotalEventCount() = %d, want 1 (only the scope#enter)", l.TotalEventCount())
	}
}
