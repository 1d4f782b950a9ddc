// Package snapshot serializes a post-batch database view to a flat
// msgpack payload and restores it: a schema-versioned struct encoded
// with github.com/vmihailenco/msgpack/v5, written atomically via a temp
// file and rename.
//
// A snapshot is a point-in-time export, not a live handle: it is taken
// between batches (reads never race an in-flight batch) and restoring one
// replays its zones and events through a fresh Listener rather than
// reconstructing indices by hand, so every derived index (summary, zone,
// event, flow) rebuilds itself exactly the way live ingest would.
package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"tracedb/internal/ingest"
	"tracedb/internal/schema"
)

// schemaVersion guards the wire format; bump on any incompatible change
// to Payload's shape.
const schemaVersion uint16 = 1

// TypeRecord mirrors one interned schema.Type, flattened for encoding.
type TypeRecord struct {
	Name     string
	ArgNames []string
	ArgKinds []uint8
	Flags    uint8
}

// ZoneRecord mirrors one model.Zone plus its events, in the order the
// zone's own index holds them (time asc, then position asc).
type ZoneRecord struct {
	Name, Type, Location string
	Events               []EventRecord
}

// EventRecord mirrors one model.Event with its type resolved to a name
// so a restored snapshot is immune to a different registration order on
// the receiving end.
type EventRecord struct {
	TypeName string
	Time     int64
	Args     []ArgRecord
}

// ArgRecord mirrors one schema.Value.
type ArgRecord struct {
	Kind uint8
	I    int64
	F    float64
	S    string
	B    bool
}

// Payload is the full exported view: every interned type (builtins
// included, so Restore can verify nothing drifted) and every zone with
// its events in the zone index's sorted order.
type Payload struct {
	Schema     uint16
	Types      []TypeRecord
	Zones      []ZoneRecord
	SourceName []string
	Timebase   []int64
}

// Export builds a Payload from l's current state. Callers must not call
// Export concurrently with an in-flight batch.
func Export(l *ingest.Listener) *Payload {
	reg := l.Registry()
	p := &Payload{Schema: schemaVersion}

	for id := schema.TypeID(1); int(id) <= reg.Len(); id++ {
		t := reg.Get(id)
		if t == nil {
			continue
		}
		argNames := make([]string, len(t.Args))
		argKinds := make([]uint8, len(t.Args))
		for i, a := range t.Args {
			argNames[i] = a.Name
			argKinds[i] = uint8(a.Kind)
		}
		p.Types = append(p.Types, TypeRecord{
			Name:     t.Name,
			ArgNames: argNames,
			ArgKinds: argKinds,
			Flags:    uint8(t.Flags),
		})
	}

	for _, z := range l.Zones() {
		zi, ok := l.ZoneIndex(z.ID)
		if !ok {
			continue
		}
		zr := ZoneRecord{Name: z.Name, Type: z.Type, Location: z.Location}
		for _, e := range zi.Events() {
			t := reg.Get(e.Type)
			if t == nil {
				continue
			}
			args := make([]ArgRecord, len(e.Args))
			for i, v := range e.Args {
				args[i] = ArgRecord{Kind: uint8(v.Kind), I: v.I, F: v.F, S: v.S, B: v.B}
			}
			zr.Events = append(zr.Events, EventRecord{TypeName: t.Name, Time: e.Time, Args: args})
		}
		p.Zones = append(p.Zones, zr)
	}

	for _, name := range l.Sources() {
		p.SourceName = append(p.SourceName, name)
	}

	return p
}

// WriteFile encodes p to path atomically: encode to a temp file in the
// same directory, then rename over the destination.
func WriteFile(path string, p *Payload) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-snapshot-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(p); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile decodes a Payload previously written by WriteFile.
func ReadFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot: %s does not exist", path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var p Payload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("snapshot: unsupported schema version %d (want %d)", p.Schema, schemaVersion)
	}
	return &p, nil
}

// Restore replays p's zones and events through l via the normal ingest
// contract, rebuilding every derived index from scratch.
func Restore(l *ingest.Listener, p *Payload) error {
	for _, tr := range p.Types {
		args := make([]schema.ArgSpec, len(tr.ArgNames))
		for i, name := range tr.ArgNames {
			args[i] = schema.ArgSpec{Name: name, Kind: schema.ArgKind(tr.ArgKinds[i])}
		}
		l.Registry().Register(tr.Name, args, schema.Flags(tr.Flags))
	}

	for _, name := range p.SourceName {
		l.SourceAdded(name, 0)
	}

	l.BeginEventBatch()
	for _, zr := range p.Zones {
		zone := l.EnsureZone(0, zr.Name, zr.Type, zr.Location)
		for _, er := range zr.Events {
			// EnsureZone already synthesized this zone's own
			// wtf.zone#create event; the exported record is the same
			// event, not a second one, so replaying it here would
			// duplicate it on every export/restore round-trip.
			if er.TypeName == schema.NameZoneCreate {
				continue
			}
			args := make([]schema.Value, len(er.Args))
			for i, ar := range er.Args {
				args[i] = schema.Value{Kind: schema.ArgKind(ar.Kind), I: ar.I, F: ar.F, S: ar.S, B: ar.B}
			}
			l.TraceEvent(zone, er.Time, er.TypeName, args)
		}
	}
	l.EndEventBatch()
	return nil
}

// Checksum returns a short hex label identifying p's content, useful for
// a CLI's "snapshot taken: <checksum>" confirmation line. It is not
// cryptographically meaningful, only stable across identical payloads.
func Checksum(p *Payload) string {
	var n int
	for _, z := range p.Zones {
		n += len(z.Events)
	}
	b := []byte{byte(n), byte(n >> 8), byte(len(p.Zones)), byte(len(p.Types))}
	return hex.EncodeToString(b)
}
