// Package events is the database's notification bus: SOURCES_CHANGED,
// SOURCE_ERROR, ZONES_ADDED, and INVALIDATED notifications fan out to
// every subscriber synchronously, one Publish call broadcast to every
// subscriber in sequence.
package events

import "sync"

// Kind identifies which of the four notification kinds an Event is.
type Kind int

const (
	SourcesChanged Kind = iota
	SourceError
	ZonesAdded
	Invalidated
)

func (k Kind) String() string {
	switch k {
	case SourcesChanged:
		return "SOURCES_CHANGED"
	case SourceError:
		return "SOURCE_ERROR"
	case ZonesAdded:
		return "ZONES_ADDED"
	case Invalidated:
		return "INVALIDATED"
	default:
		return "UNKNOWN"
	}
}

// Event is one notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind  Kind
	Zones []uint32 // model.ZoneID values, kept untyped here to avoid an import cycle with internal/model
	Err   error
}

func NewSourcesChanged() Event           { return Event{Kind: SourcesChanged} }
func NewSourceError(err error) Event     { return Event{Kind: SourceError, Err: err} }
func NewZonesAdded(zones []uint32) Event { return Event{Kind: ZonesAdded, Zones: zones} }
func NewInvalidated() Event              { return Event{Kind: Invalidated} }

// Handler receives published events. It runs synchronously on the
// publisher's goroutine, so a handler that blocks stalls the publisher;
// Bus.mu is not held while it runs.
type Handler func(Event)

// Bus is a synchronous, thread-safe publisher. Publish with no
// subscribers is a no-op.
type Bus struct {
	mu       sync.Mutex
	handlers map[int]Handler
	next     int
}

// New creates an empty bus.
func New() *Bus { return &Bus{handlers: make(map[int]Handler)} }

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish broadcasts e to every current subscriber, in an unspecified
// order, holding the bus lock only long enough to snapshot the
// subscriber list so a handler is free to call Subscribe/unsubscribe.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	snapshot := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		snapshot = append(snapshot, h)
	}
	b.mu.Unlock()
	for _, h := range snapshot {
		h(e)
	}
}
