package wireadapter_test

import (
	"bytes"
	"testing"

	"tracedb/internal/events"
	"tracedb/internal/ingest"
	"tracedb/internal/schema"
	"tracedb/internal/wireadapter"
)

// buildNestedTrace encodes a single zone with two nested scopes.
func buildNestedTrace(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := wireadapter.NewEncoder(&buf)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	must(enc.SourceAdded("s1", 0))
	must(enc.BeginBatch())
	must(enc.Event("Z", "thread", "host1", schema.NameZoneCreate, 0, nil))
	must(enc.Event("Z", "thread", "host1", schema.NameScopeEnter, 10, []wireadapter.Arg{{Kind: uint8(schema.KindString), S: "A"}}))
	must(enc.Event("Z", "thread", "host1", schema.NameScopeEnter, 20, []wireadapter.Arg{{Kind: uint8(schema.KindString), S: "B"}}))
	must(enc.Event("Z", "thread", "host1", schema.NameScopeLeave, 30, nil))
	must(enc.Event("Z", "thread", "host1", schema.NameScopeLeave, 50, nil))
	must(enc.EndBatch())
	return buf.Bytes()
}

func TestRunReconstructsNestedScopes(t *testing.T) {
	reg := schema.NewRegistry()
	l := ingest.New(reg, events.New())

	if err := wireadapter.Run(l, bytes.NewReader(buildNestedTrace(t)), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	zones := l.Zones()
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	zi, ok := l.ZoneIndex(zones[0].ID)
	if !ok {
		t.Fatalf("missing zone index")
	}
	roots := zi.GetRootScopes()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root scope, got %d", len(roots))
	}
	a, ok := zi.Scope(roots[0])
	if !ok || a.Name != "A" {
		t.Fatalf("expected root scope A, got %+v ok=%v", a, ok)
	}
	if !a.HasTotalDuration || a.TotalDurationUS != 40 {
		t.Fatalf("A.totalDuration = %v (has=%v), want 40", a.TotalDurationUS, a.HasTotalDuration)
	}
	if !a.HasUserDuration || a.UserDurationUS != 30 {
		t.Fatalf("A.userDuration = %v (has=%v), want 30", a.UserDurationUS, a.HasUserDuration)
	}
	if len(a.Children) != 1 {
		t.Fatalf("expected A to have 1 child, got %d", len(a.Children))
	}
	b, ok := zi.Scope(a.Children[0])
	if !ok || b.Name != "B" {
		t.Fatalf("expected child scope B, got %+v ok=%v", b, ok)
	}
	if !b.HasTotalDuration || b.TotalDurationUS != 10 {
		t.Fatalf("B.totalDuration = %v, want 10", b.TotalDurationUS)
	}
	if !b.HasUserDuration || b.UserDurationUS != 10 {
		t.Fatalf("B.userDuration = %v, want 10", b.UserDurationUS)
	}

	// totalEventCount excludes the two leaves and the INTERNAL zone#create,
	// leaving the two enters.
	if got := l.TotalEventCount(); got != 2 {
		t.Fatalf("TotalEventCount() = %d, want 2", got)
	}
}

func TestRunPropagatesSourceError(t *testing.T) {
	reg := schema.NewRegistry()
	l := ingest.New(reg, events.New())

	var buf bytes.Buffer
	enc := wireadapter.NewEncoder(&buf)
	if err := enc.SourceError("bad frame", "offset 42"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if err := wireadapter.Run(l, bytes.NewReader(buf.Bytes()), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if l.Diagnostics().Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", l.Diagnostics().Len())
	}
}
