package wireadapter

import (
	"errors"
	"fmt"
	"io"

	"tracedb/internal/ingest"
	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// Progress is called after every frame Run processes, so a caller (the
// CLI's bubbletea model) can render ingest progress without the adapter
// knowing anything about terminals.
type Progress func(f Frame)

type zoneKey struct{ name, typ, location string }

// adapter tracks the wire-level zone identity -> model.ZoneID mapping so
// it only calls Listener.EnsureZone once per zone.
type adapter struct {
	l     *ingest.Listener
	zones map[zoneKey]model.ZoneID
}

// Run reads frames from r until EOF, driving l through the inbound
// listener contract in order. A KindSourceError frame is reported via
// l.SourceError and does not stop the run: the ingest path never aborts
// mid-batch over a single data error.
func Run(l *ingest.Listener, r io.Reader, progress Progress) error {
	a := &adapter{l: l, zones: make(map[zoneKey]model.ZoneID, 8)}
	dec := NewDecoder(r)
	for {
		f, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("wireadapter: decode: %w", err)
		}
		if err := a.apply(f); err != nil {
			return err
		}
		if progress != nil {
			progress(*f)
		}
	}
}

func (a *adapter) apply(f *Frame) error {
	switch f.Kind {
	case KindSourceAdded:
		a.l.SourceAdded(f.SourceName, f.TimebaseUS)
	case KindBeginBatch:
		a.l.BeginEventBatch()
	case KindEvent:
		return a.applyEvent(f)
	case KindEndBatch:
		a.l.EndEventBatch()
	case KindSourceError:
		a.l.SourceError(fmt.Errorf("%s: %s", f.Message, f.Detail))
	default:
		return fmt.Errorf("wireadapter: unknown frame kind %d", f.Kind)
	}
	return nil
}

// applyEvent resolves f's zone, creating it on first sight (once, via
// EnsureZone), then fans the event itself out through TraceEvent --
// except for an explicit wtf.zone#create frame, whose creation side
// effect EnsureZone already produced, so it is not also replayed as a
// second event. A create frame for a zone already seen is passed to
// EnsureZone again so the duplicate is reported.
func (a *adapter) applyEvent(f *Frame) error {
	key := zoneKey{f.ZoneName, f.ZoneType, f.ZoneLocation}
	id, ok := a.zones[key]
	justCreated := false
	if !ok {
		id = a.l.EnsureZone(f.Time, f.ZoneName, f.ZoneType, f.ZoneLocation)
		a.zones[key] = id
		justCreated = true
	}
	if f.TypeName == schema.NameZoneCreate {
		if !justCreated {
			// A repeated create for a known zone goes back through
			// EnsureZone, which reports the duplicate and adds no event.
			a.l.EnsureZone(f.Time, f.ZoneName, f.ZoneType, f.ZoneLocation)
		}
		return nil
	}
	a.l.TraceEvent(id, f.Time, f.TypeName, toValues(f.Args))
	return nil
}

func toValues(args []Arg) []schema.Value {
	if len(args) == 0 {
		return nil
	}
	out := make([]schema.Value, len(args))
	for i, a := range args {
		out[i] = schema.Value{Kind: schema.ArgKind(a.Kind), I: a.I, F: a.F, S: a.S, B: a.B}
	}
	return out
}
