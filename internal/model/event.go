package model

import "tracedb/internal/schema"

// Event is an immutable ingested record: a monotonic time relative to its
// source's timebase, a reference to its interned EventType, schema-aligned
// argument values, and a position assigned at the next endBatch.
type Event struct {
	Time     int64 // microseconds relative to the owning source's timebase
	Type     schema.TypeID
	Args     []schema.Value // aligned to Registry.Get(Type).Args
	Position Position

	// Zone identifies which zone this event belongs to. The literal wire
	// record a source adapter sends carries no such field -- it is
	// implicit in which zone's stream the event arrived on -- but every
	// in-memory Event needs it explicitly once the listener fans a batch
	// out to all zone indices: ZoneIndex.InsertEvent has to know whether
	// an incoming event is its own.
	Zone ZoneID

	// insSeq is the order in which the event was appended to its index
	// within the current batch; it breaks (time) ties deterministically
	// before renumbering assigns the final Position").
	insSeq uint64
}

// NewEvent constructs an event with its insertion sequence left zero; the
// owning index stamps insSeq when it is appended.
func NewEvent(zone ZoneID, t int64, typ schema.TypeID, args []schema.Value) Event {
	return Event{Zone: zone, Time: t, Type: typ, Args: args}
}

// Arg looks up an argument by name using the type's schema, returning
// false if the type carries no such argument.
func (e *Event) Arg(reg *schema.Registry, name string) (schema.Value, bool) {
	t := reg.Get(e.Type)
	if t == nil {
		return schema.Value{}, false
	}
	i, ok := t.ArgIndex(name)
	if !ok || i >= len(e.Args) {
		return schema.Value{}, false
	}
	return e.Args[i], true
}

// InsertionSeq returns the tie-breaking insertion order used before
// positions are renumbered.
func (e *Event) InsertionSeq() uint64 { return e.insSeq }

// SetInsertionSeq is called by the owning index on append.
func (e *Event) SetInsertionSeq(seq uint64) { e.insSeq = seq }

// Less implements the database event comparator (time asc, then the
// tie-breaker): before renumbering that's insertion sequence, after
// renumbering it's Position -- both satisfy "time asc, position asc"
// since renumber assigns positions in the same relative order.
func Less(a, b *Event) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if a.Position != NoPosition || b.Position != NoPosition {
		return a.Position < b.Position
	}
	return a.insSeq < b.insSeq
}
