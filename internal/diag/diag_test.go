package diag_test

import (
	"testing"

	"tracedb/internal/diag"
)

func TestBagAddRespectsCapacity(t *testing.T) {
	bag := diag.NewBag(2)
	if !bag.Add(diag.NewWarning(diag.UnmatchedScopeLeave, diag.Locus{}, "first")) {
		t.Fatalf("expected first Add to succeed")
	}
	if !bag.Add(diag.NewWarning(diag.UnmatchedScopeLeave, diag.Locus{}, "second")) {
		t.Fatalf("expected second Add to succeed")
	}
	if bag.Add(diag.NewWarning(diag.UnmatchedScopeLeave, diag.Locus{}, "third")) {
		t.Fatalf("expected Add to fail once the bag is at capacity")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bag.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.NewWarning(diag.DuplicateZoneCreate, diag.Locus{}, "warn"))
	if bag.HasErrors() {
		t.Fatalf("expected no errors yet")
	}
	bag.Add(diag.NewError(diag.SourceParseError, diag.Locus{}, "boom"))
	if !bag.HasErrors() {
		t.Fatalf("expected HasErrors to report true once an error is added")
	}
}

func TestBagSortOrdersByZoneThenTimeThenSeverity(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Add(diag.NewWarning(diag.UnmatchedScopeLeave, diag.Locus{Zone: "B", Time: 1}, "b1"))
	bag.Add(diag.NewError(diag.UnmatchedScopeLeave, diag.Locus{Zone: "A", Time: 5}, "a5"))
	bag.Add(diag.NewWarning(diag.UnmatchedScopeLeave, diag.Locus{Zone: "A", Time: 1}, "a1warn"))
	bag.Add(diag.NewError(diag.UnmatchedScopeLeave, diag.Locus{Zone: "A", Time: 1}, "a1err"))

	bag.Sort()
	items := bag.Items()
	want := []string{"a1err", "a1warn", "a5", "b1"}
	for i, w := range want {
		if items[i].Message != w {
			t.Fatalf("items[%d].Message = %q, want %q", i, items[i].Message, w)
		}
	}
}

func TestReportBuilderEmitsExactlyOnce(t *testing.T) {
	bag := diag.NewBag(4)
	r := diag.BagReporter{Bag: bag}

	b := diag.ReportError(r, diag.SourceParseError, diag.Locus{Zone: "Z"}, "bad frame")
	b.Emit()
	b.Emit() // must be a no-op the second time

	if bag.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", bag.Len())
	}
	if got := bag.Items()[0]; got.Severity != diag.SevError || got.Message != "bad frame" {
		t.Fatalf("unexpected diagnostic: %+v", got)
	}
}

func TestNopReporterDiscards(t *testing.T) {
	// Nop must be safely callable even though it has nowhere to put d.
	diag.Nop.Report(diag.NewError(diag.SourceParseError, diag.Locus{}, "discarded"))
}
