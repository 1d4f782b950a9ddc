package zoneindex_test

import (
	"testing"

	"tracedb/internal/diag"
	"tracedb/internal/model"
	"tracedb/internal/schema"
	"tracedb/internal/zoneindex"
)

func newRegistry() *schema.Registry { return schema.NewRegistry() }

func enterEvent(reg *schema.Registry, zone model.ZoneID, t int64, name string) model.Event {
	typ, _ := reg.Lookup(schema.NameScopeEnter)
	return model.NewEvent(zone, t, typ, []schema.Value{schema.StringValue(name)})
}

func leaveEvent(reg *schema.Registry, zone model.ZoneID, t int64) model.Event {
	typ, _ := reg.Lookup(schema.NameScopeLeave)
	return model.NewEvent(zone, t, typ, nil)
}

// TestNestedScopesReconstructForest covers a scope A enclosing a scope B,
// both entered/left in order, producing a single root with total/user
// durations derived from the nesting.
func TestNestedScopesReconstructForest(t *testing.T) {
	reg := newRegistry()
	ix := zoneindex.New(1, "Z", reg, nil)

	ix.BeginInserting()
	ix.InsertEvent(enterEvent(reg, 1, 10, "A"))
	ix.InsertEvent(enterEvent(reg, 1, 20, "B"))
	ix.InsertEvent(leaveEvent(reg, 1, 30))
	ix.InsertEvent(leaveEvent(reg, 1, 50))
	ix.EndInserting()
	ix.Renumber(1)

	roots := ix.GetRootScopes()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root scope, got %d", len(roots))
	}
	a, ok := ix.Scope(roots[0])
	if !ok || a.Name != "A" {
		t.Fatalf("expected root A, got %+v", a)
	}
	if len(a.Children) != 1 {
		t.Fatalf("expected A to have 1 child, got %d", len(a.Children))
	}
	b, ok := ix.Scope(a.Children[0])
	if !ok || b.Name != "B" {
		t.Fatalf("expected child B, got %+v", b)
	}

	if !a.HasTotalDuration || a.TotalDurationUS != 40 {
		t.Fatalf("A total duration = %+v, want 40", a)
	}
	if !b.HasTotalDuration || b.TotalDurationUS != 10 {
		t.Fatalf("B total duration = %+v, want 10", b)
	}
	if !a.HasUserDuration || a.UserDurationUS != 30 {
		t.Fatalf("A user duration = %+v, want 30", a)
	}
	if !b.HasUserDuration || b.UserDurationUS != 10 {
		t.Fatalf("B user duration = %+v, want 10", b)
	}
}

// TestOutOfOrderBatchMatchesInOrderForest covers S2: the same four events,
// appended to the index in an order that violates time order within the
// batch, must still reconstruct the identical forest as the in-order case
// once EndInserting re-sorts and rebuilds.
func TestOutOfOrderBatchMatchesInOrderForest(t *testing.T) {
	reg := newRegistry()
	ix := zoneindex.New(1, "Z", reg, nil)

	ix.BeginInserting()
	// Arrival order: B-enter, A-enter, A-leave, B-leave -- none of these
	// are in time order (20, 10, 50, 30).
	ix.InsertEvent(enterEvent(reg, 1, 20, "B"))
	ix.InsertEvent(enterEvent(reg, 1, 10, "A"))
	ix.InsertEvent(leaveEvent(reg, 1, 50))
	ix.InsertEvent(leaveEvent(reg, 1, 30))
	ix.EndInserting()
	ix.Renumber(1)

	roots := ix.GetRootScopes()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root scope, got %d", len(roots))
	}
	a, ok := ix.Scope(roots[0])
	if !ok || a.Name != "A" {
		t.Fatalf("expected root A, got %+v", a)
	}
	if len(a.Children) != 1 {
		t.Fatalf("expected A to have 1 child, got %d", len(a.Children))
	}
	b, ok := ix.Scope(a.Children[0])
	if !ok || b.Name != "B" {
		t.Fatalf("expected child B, got %+v", b)
	}
	if !a.HasTotalDuration || a.TotalDurationUS != 40 {
		t.Fatalf("A total duration = %+v, want 40", a)
	}
	if !b.HasTotalDuration || b.TotalDurationUS != 10 {
		t.Fatalf("B total duration = %+v, want 10", b)
	}
}

// TestUnmatchedLeaveReportsErrorAndNoScope covers S3: a leave with no open
// scope on the stack raises exactly one UnmatchedScopeLeave error and
// creates no scope.
func TestUnmatchedLeaveReportsErrorAndNoScope(t *testing.T) {
	reg := newRegistry()
	bag := diag.NewBag(8)
	ix := zoneindex.New(1, "Z", reg, diag.BagReporter{Bag: bag})

	ix.BeginInserting()
	ix.InsertEvent(leaveEvent(reg, 1, 10))
	ix.EndInserting()

	if len(ix.GetRootScopes()) != 0 {
		t.Fatalf("expected no scopes created, got %d roots", len(ix.GetRootScopes()))
	}
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(items))
	}
	if items[0].Code != diag.UnmatchedScopeLeave {
		t.Fatalf("expected UnmatchedScopeLeave, got %v", items[0].Code)
	}
}

// TestRebuildWindowExceededWarnsButStillRebuilds ensures an out-of-order
// batch wider than the configured rebuild window still reconstructs a
// correct forest, just with a warning diagnostic attached.
func TestRebuildWindowExceededWarnsButStillRebuilds(t *testing.T) {
	reg := newRegistry()
	bag := diag.NewBag(8)
	ix := zoneindex.New(1, "Z", reg, diag.BagReporter{Bag: bag})
	ix.SetMaxRebuildWindow(2)

	ix.BeginInserting()
	ix.InsertEvent(enterEvent(reg, 1, 20, "B"))
	ix.InsertEvent(enterEvent(reg, 1, 10, "A"))
	ix.InsertEvent(leaveEvent(reg, 1, 50))
	ix.InsertEvent(leaveEvent(reg, 1, 30))
	ix.EndInserting()

	roots := ix.GetRootScopes()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root scope despite the wide rebuild, got %d", len(roots))
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.RebuildWindowExceeded {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a RebuildWindowExceeded warning")
	}
}

// TestGetScopeAtReturnsInnermostEnclosingScope exercises GetScopeAt against
// the S1 forest.
func TestGetScopeAtReturnsInnermostEnclosingScope(t *testing.T) {
	reg := newRegistry()
	ix := zoneindex.New(1, "Z", reg, nil)

	ix.BeginInserting()
	ix.InsertEvent(enterEvent(reg, 1, 10, "A"))
	ix.InsertEvent(enterEvent(reg, 1, 20, "B"))
	ix.InsertEvent(leaveEvent(reg, 1, 30))
	ix.InsertEvent(leaveEvent(reg, 1, 50))
	ix.EndInserting()

	id := ix.GetScopeAt(25)
	sc, ok := ix.Scope(id)
	if !ok || sc.Name != "B" {
		t.Fatalf("expected innermost scope B at t=25, got %+v", sc)
	}
	id = ix.GetScopeAt(35)
	sc, ok = ix.Scope(id)
	if !ok || sc.Name != "A" {
		t.Fatalf("expected scope A at t=35 (after B closed), got %+v", sc)
	}
}
