// Package ingest implements the Listener: the single-writer ingest
// coordinator that turns a source adapter's batched calls into fanned-
// out index updates. Each batch runs a fixed, deterministic fan-out
// order over every target index; shared state only mutates between a
// batch's begin and end.
package ingest

import (
	"fmt"
	"time"

	"fortio.org/safecast"

	"tracedb/internal/diag"
	"tracedb/internal/eventindex"
	"tracedb/internal/events"
	"tracedb/internal/flow"
	"tracedb/internal/frameindex"
	"tracedb/internal/metrics"
	"tracedb/internal/model"
	"tracedb/internal/observ"
	"tracedb/internal/schema"
	"tracedb/internal/summaryindex"
	"tracedb/internal/zoneindex"
)

// target is the common batch protocol every fan-out recipient
// implements: SummaryIndex, ZoneIndex, and EventIndex all satisfy it
// today.
type target interface {
	BeginInserting()
	InsertEvent(e model.Event)
	EndInserting()
}

// Listener owns every index and is the sole writer to them. A source
// adapter drives it through BeginEventBatch/TraceEvent/EndEventBatch;
// concurrent writers are not supported.
type Listener struct {
	reg *schema.Registry
	bus *events.Bus

	report diag.Reporter
	bag    *diag.Bag

	summary *summaryindex.Index
	flows   *flow.Tracker

	zones      []model.Zone // index 0 unused
	zonesByKey map[model.ZoneKey]model.ZoneID
	zoneIdx    map[model.ZoneID]*zoneindex.Index
	zoneOrder  []model.ZoneID // creation order == deterministic renumber order

	eventIdx   map[string]*eventindex.Index
	eventOrder []string

	sources    map[string]struct{}
	timebases  []int64
	totalCount uint64

	inBatch           bool
	batchCount        uint64
	pendingZones      []model.ZoneID
	insertedThisBatch uint64

	defaultRebuildWindow int
}

// SetDefaultRebuildWindow overrides the rebuild-window warning threshold
// applied to every zone created from this point on.
func (l *Listener) SetDefaultRebuildWindow(n int) {
	l.defaultRebuildWindow = n
}

// New creates an empty listener. bus may be nil, in which case the
// listener creates its own bus, reachable through Bus().
func New(reg *schema.Registry, bus *events.Bus) *Listener {
	if bus == nil {
		bus = events.New()
	}
	l := &Listener{
		reg:        reg,
		bus:        bus,
		bag:        diag.NewBag(4096),
		zones:      make([]model.Zone, 1),
		zonesByKey: make(map[model.ZoneKey]model.ZoneID),
		zoneIdx:    make(map[model.ZoneID]*zoneindex.Index),
		eventIdx:   make(map[string]*eventindex.Index),
		sources:    make(map[string]struct{}),
	}
	l.report = diag.FuncReporter(func(d diag.Diagnostic) {
		l.bag.Add(d)
		metrics.DiagnosticsRaised.WithLabelValues(d.Code.String(), d.Severity.String()).Inc()
		if d.Severity == diag.SevError {
			l.bus.Publish(events.NewSourceError(fmt.Errorf("%s: %s", d.Code, d.Message)))
		}
	})
	l.summary = summaryindex.New()
	l.flows = flow.New(reg, l.report)
	return l
}

// Report forwards d through the listener's own diagnostic pipeline (bag,
// metrics, SOURCE_ERROR notification on severity=error), letting callers
// outside the ingest package -- the query engine, in particular -- raise
// a diagnostic without reimplementing that fan-out.
func (l *Listener) Report(d diag.Diagnostic) { l.report.Report(d) }

func (l *Listener) Registry() *schema.Registry   { return l.reg }
func (l *Listener) Bus() *events.Bus             { return l.bus }
func (l *Listener) Diagnostics() *diag.Bag       { return l.bag }
func (l *Listener) Summary() *summaryindex.Index { return l.summary }
func (l *Listener) Flows() *flow.Tracker         { return l.flows }

// Zones returns every zone discovered so far, in creation order.
func (l *Listener) Zones() []model.Zone {
	if len(l.zones) <= 1 {
		return nil
	}
	return append([]model.Zone(nil), l.zones[1:]...)
}

// ZoneIndex returns the index for a known zone.
func (l *Listener) ZoneIndex(id model.ZoneID) (*zoneindex.Index, bool) {
	zi, ok := l.zoneIdx[id]
	return zi, ok
}

// ZoneIndices returns every zone's index, in creation order.
func (l *Listener) ZoneIndices() []*zoneindex.Index {
	out := make([]*zoneindex.Index, len(l.zoneOrder))
	for i, id := range l.zoneOrder {
		out[i] = l.zoneIdx[id]
	}
	return out
}

// FirstFrameIndex returns the frame index of the first zone created, if
// any.
func (l *Listener) FirstFrameIndex() (*frameindex.Index, bool) {
	if len(l.zoneOrder) == 0 {
		return nil, false
	}
	return l.zoneIdx[l.zoneOrder[0]].FrameIndex(), true
}

// EventIndex returns the per-name index for name, if one has been
// created via CreateEventIndex.
func (l *Listener) EventIndex(name string) (*eventindex.Index, bool) {
	ix, ok := l.eventIdx[name]
	return ix, ok
}

// CreateEventIndex creates (or returns the existing) per-name index for
// name. An index created mid-run starts empty and is never back-filled
// from history.
func (l *Listener) CreateEventIndex(name string) *eventindex.Index {
	if ix, ok := l.eventIdx[name]; ok {
		return ix
	}
	ix := eventindex.New(name, l.reg, l.batchCount > 0)
	l.eventIdx[name] = ix
	l.eventOrder = append(l.eventOrder, name)
	if l.inBatch {
		ix.BeginInserting()
	}
	return ix
}

// SourceAdded records that a new source is feeding this listener,
// recording its timebase, and publishes SOURCES_CHANGED and INVALIDATED.
func (l *Listener) SourceAdded(name string, timebaseUS int64) {
	l.sources[name] = struct{}{}
	l.timebases = append(l.timebases, timebaseUS)
	l.bus.Publish(events.NewSourcesChanged())
	l.bus.Publish(events.NewInvalidated())
}

// Timebase returns the common timebase across every registered source:
// the minimum of their individual timebases.
func (l *Listener) Timebase() (int64, bool) {
	if len(l.timebases) == 0 {
		return 0, false
	}
	min := l.timebases[0]
	for _, tb := range l.timebases[1:] {
		if tb < min {
			min = tb
		}
	}
	return min, true
}

// TotalEventCount reports the number of ingested events excluding those
// flagged INTERNAL or typed wtf.scope#leave.
func (l *Listener) TotalEventCount() uint64 { return l.totalCount }

// FirstEventTime and LastEventTime delegate to the summary index.
func (l *Listener) FirstEventTime() (int64, bool) {
	first, _, ok := l.summary.TimeRange()
	return first, ok
}

func (l *Listener) LastEventTime() (int64, bool) {
	_, last, ok := l.summary.TimeRange()
	return last, ok
}

// Sources returns the names of every source registered so far.
func (l *Listener) Sources() []string {
	out := make([]string, 0, len(l.sources))
	for s := range l.sources {
		out = append(out, s)
	}
	return out
}

// SourceError reports a source-level failure (not tied to a single
// event), e.g. a malformed wire frame.
func (l *Listener) SourceError(err error) {
	l.report.Report(diag.NewError(diag.SourceParseError, diag.Locus{}, err.Error()))
}

// EnsureZone resolves (name, typ, location) to a ZoneID, creating a new
// zone and its ZoneIndex on first sight and inserting the synthetic
// wtf.zone#create event into that zone's own stream. A duplicate create
// for an already-known identity tuple is ignored, but reported as a
// diagnostic rather than silently dropped.
func (l *Listener) EnsureZone(t int64, name, typ, location string) model.ZoneID {
	key := model.ZoneKey{Name: name, Type: typ, Location: location}
	if id, ok := l.zonesByKey[key]; ok {
		l.report.Report(diag.NewWarning(diag.DuplicateZoneCreate,
			diag.Locus{Zone: name, Time: t}, "duplicate zone#create for an already-known zone"))
		return id
	}

	value, err := safecast.Conv[uint32](len(l.zones))
	if err != nil {
		panic(fmt.Errorf("ingest: zone arena overflow: %w", err))
	}
	id := model.ZoneID(value)
	l.zones = append(l.zones, model.Zone{ID: id, Name: name, Type: typ, Location: location})
	l.zonesByKey[key] = id

	zi := zoneindex.New(id, name, l.reg, l.report)
	if l.defaultRebuildWindow > 0 {
		zi.SetMaxRebuildWindow(l.defaultRebuildWindow)
	}
	l.zoneIdx[id] = zi
	// A zone created mid-batch is appended to the end of the zones
	// sub-range of the target list, never reordered into it, so later
	// events in this same batch still see every earlier zone first.
	l.zoneOrder = append(l.zoneOrder, id)
	if l.inBatch {
		zi.BeginInserting()
	}

	metrics.ZonesCreated.Inc()
	l.pendingZones = append(l.pendingZones, id)

	typeID, ok := l.reg.Lookup(schema.NameZoneCreate)
	if ok {
		ev := model.NewEvent(id, t, typeID, []schema.Value{
			schema.StringValue(name), schema.StringValue(typ), schema.StringValue(location),
		})
		l.insertIntoAllTargets(ev)
	}
	return id
}

// BeginEventBatch enters the mutable phase across every target. Calling
// it while already inside a batch is a programmer error.
func (l *Listener) BeginEventBatch() {
	if l.inBatch {
		panic("ingest: BeginEventBatch called while already inserting")
	}
	l.inBatch = true
	l.insertedThisBatch = 0
	l.summary.BeginInserting()
	for _, id := range l.zoneOrder {
		l.zoneIdx[id].BeginInserting()
	}
	for _, name := range l.eventOrder {
		l.eventIdx[name].BeginInserting()
	}
}

// TraceEvent fans one event out to every target and to the flow
// tracker. zone must already exist, e.g. via EnsureZone. Calling it
// outside a batch is a programmer error.
func (l *Listener) TraceEvent(zone model.ZoneID, t int64, typeName string, args []schema.Value) {
	if !l.inBatch {
		panic("ingest: TraceEvent called outside a batch")
	}
	typeID, ok := l.reg.Lookup(typeName)
	if !ok {
		l.report.Report(diag.NewError(diag.SourceParseError,
			diag.Locus{Time: t}, fmt.Sprintf("unknown event type %q", typeName)))
		return
	}
	ev := model.NewEvent(zone, t, typeID, args)
	l.insertIntoAllTargets(ev)
}

func (l *Listener) insertIntoAllTargets(ev model.Event) {
	l.summary.InsertEvent(ev)
	for _, id := range l.zoneOrder {
		l.zoneIdx[id].InsertEvent(ev)
	}
	for _, name := range l.eventOrder {
		l.eventIdx[name].InsertEvent(ev)
	}
	l.flows.HandleEvent(&ev)

	if t := l.reg.Get(ev.Type); t != nil && !t.Flags.Has(schema.FlagInternal) && !t.Flags.Has(schema.FlagScopeLeave) {
		l.totalCount++
	}
	l.insertedThisBatch++
	metrics.EventsIngested.Inc()
}

// EndEventBatch leaves the mutable phase across every target, then
// renumbers positions zone by zone in creation order: each zone gets a
// contiguous block of the dense, database-wide position space.
func (l *Listener) EndEventBatch() {
	start := time.Now()
	l.summary.EndInserting()
	for _, id := range l.zoneOrder {
		l.zoneIdx[id].EndInserting()
	}
	for _, name := range l.eventOrder {
		l.eventIdx[name].EndInserting()
	}

	pos := model.Position(1)
	for _, id := range l.zoneOrder {
		pos = l.zoneIdx[id].Renumber(pos)
	}

	l.batchCount++
	l.inBatch = false
	metrics.BatchesCompleted.Inc()
	metrics.BatchIngestDuration.Observe(observ.Since(start))

	if len(l.pendingZones) > 0 {
		added := make([]uint32, len(l.pendingZones))
		for i, id := range l.pendingZones {
			added[i] = uint32(id)
		}
		l.bus.Publish(events.NewZonesAdded(added))
		l.pendingZones = l.pendingZones[:0]
	}
	if l.insertedThisBatch > 0 {
		l.bus.Publish(events.NewInvalidated())
	}
}
