package model_test

import (
	"testing"

	"tracedb/internal/model"
)

// TestLessOrdersByTimeThenTiebreak checks the database event comparator:
// time ascending, then position (once assigned) or insertion sequence.
func TestLessOrdersByTimeThenTiebreak(t *testing.T) {
	a := model.Event{Time: 10}
	b := model.Event{Time: 20}
	if !model.Less(&a, &b) {
		t.Fatalf("expected earlier time to sort first")
	}
	if model.Less(&b, &a) {
		t.Fatalf("expected later time to not sort before earlier")
	}

	c := model.Event{Time: 10}
	d := model.Event{Time: 10}
	c.SetInsertionSeq(1)
	d.SetInsertionSeq(2)
	if !model.Less(&c, &d) {
		t.Fatalf("expected lower insertion seq to sort first on a time tie")
	}

	e := model.Event{Time: 10, Position: 5}
	f := model.Event{Time: 10, Position: 3}
	e.SetInsertionSeq(0)
	f.SetInsertionSeq(99)
	if !model.Less(&f, &e) {
		t.Fatalf("expected position, once assigned, to win over insertion seq")
	}
}

// TestScopeContainsOpenExtendsToInfinity checks that an unclosed scope is
// treated as containing every time at or after its enter.
func TestScopeContainsOpenExtendsToInfinity(t *testing.T) {
	s := model.Scope{Enter: model.Event{Time: 10}, HasLeave: false}
	if s.Contains(9) {
		t.Fatalf("expected time before enter to be excluded")
	}
	if !s.Contains(10) || !s.Contains(1_000_000) {
		t.Fatalf("expected an open scope to contain every time at or after enter")
	}
}

// TestScopeContainsClosedIsHalfOpen checks [enter, leave) semantics for a
// closed scope.
func TestScopeContainsClosedIsHalfOpen(t *testing.T) {
	s := model.Scope{Enter: model.Event{Time: 10}, Leave: model.Event{Time: 20}, HasLeave: true}
	if !s.Contains(10) || !s.Contains(19) {
		t.Fatalf("expected [10,20) to contain 10 and 19")
	}
	if s.Contains(20) {
		t.Fatalf("expected leave time itself to be excluded (half-open)")
	}
}

// TestZoneKeyIdentity checks zones are identified by the (name, type,
// location) tuple used to deduplicate zone#create events.
func TestZoneKeyIdentity(t *testing.T) {
	z1 := model.Zone{Name: "main", Type: "thread", Location: "host1"}
	z2 := model.Zone{Name: "main", Type: "thread", Location: "host1"}
	z3 := model.Zone{Name: "main", Type: "thread", Location: "host2"}
	if z1.Key() != z2.Key() {
		t.Fatalf("expected identical tuples to produce equal keys")
	}
	if z1.Key() == z3.Key() {
		t.Fatalf("expected differing location to produce distinct keys")
	}
}

// TestIDValidity checks the zero-value-is-invalid convention shared by
// ZoneID, ScopeID, and FlowID.
func TestIDValidity(t *testing.T) {
	if model.NoZoneID.IsValid() || model.NoScopeID.IsValid() || model.NoFlowID.IsValid() {
		t.Fatalf("expected the reserved zero id of each kind to be invalid")
	}
	if !model.ZoneID(1).IsValid() || !model.ScopeID(1).IsValid() || !model.FlowID(1).IsValid() {
		t.Fatalf("expected a non-zero id of each kind to be valid")
	}
}
