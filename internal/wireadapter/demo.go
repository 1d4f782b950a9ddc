package wireadapter

import (
	"io"

	"tracedb/internal/schema"
)

// WriteDemo encodes a small multi-zone trace with nested scopes and one
// flow correlated across two zones, used by `tracedb demo` to produce a
// wire file without an external trace source, and by tests that want a
// richer fixture than a single-zone nested-scope trace.
func WriteDemo(w io.Writer) error {
	enc := NewEncoder(w)
	if err := enc.SourceAdded("demo", 1_700_000_000_000_000); err != nil {
		return err
	}
	if err := enc.BeginBatch(); err != nil {
		return err
	}

	events := []struct {
		zone, typ, loc, eventType string
		t                         int64
		args                      []Arg
	}{
		{"render", "thread", "host1", schema.NameZoneCreate, 0, nil},
		{"render", "thread", "host1", schema.NameScopeEnter, 0, []Arg{strArg("frame")}},
		{"render", "thread", "host1", schema.NameScopeEnter, 5, []Arg{strArg("layout")}},
		{"render", "thread", "host1", schema.NameScopeLeave, 30, nil},
		{"render", "thread", "host1", schema.NameScopeEnter, 30, []Arg{strArg("paint")}},
		{"render", "thread", "host1", schema.NameScopeLeave, 60, nil},
		{"render", "thread", "host1", schema.NameScopeLeave, 100, nil},
		{"render", "thread", "host1", schema.NameFlowBranch, 10, []Arg{intArg(1), intArg(0), strArg("submit")}},

		{"worker", "thread", "host1", schema.NameZoneCreate, 0, nil},
		{"worker", "thread", "host1", schema.NameFlowExtend, 40, []Arg{intArg(1), strArg("dispatched")}},
		{"worker", "thread", "host1", schema.NameScopeEnter, 40, []Arg{strArg("handle")}},
		{"worker", "thread", "host1", schema.NameScopeLeave, 90, nil},
		{"worker", "thread", "host1", schema.NameFlowTerminate, 90, []Arg{intArg(1)}},
	}
	for _, e := range events {
		if err := enc.Event(e.zone, e.typ, e.loc, e.eventType, e.t, e.args); err != nil {
			return err
		}
	}

	if err := enc.EndBatch(); err != nil {
		return err
	}
	return nil
}

func strArg(s string) Arg { return Arg{Kind: uint8(schema.KindString), S: s} }
func intArg(i int64) Arg  { return Arg{Kind: uint8(schema.KindInt), I: i} }
