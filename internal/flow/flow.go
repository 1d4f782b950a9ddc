// Package flow correlates asynchronous work across zones by FlowID:
// branch, extend, terminate, and data-append events arrive independently
// and in any order, and Tracker folds them into model.Flow records. A
// flow record is created on first reference, whichever event kind
// arrives first.
package flow

import (
	"encoding/binary"

	"github.com/google/uuid"

	"tracedb/internal/diag"
	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// Tracker owns every Flow in the database. Flows, unlike zones, are not
// partitioned by zone index: a branch and its extends/terminate can
// arrive on different zones entirely, so correlation has to happen at
// database scope.
type Tracker struct {
	reg    *schema.Registry
	report diag.Reporter
	flows  map[model.FlowID]*model.Flow
}

// New creates an empty tracker.
func New(reg *schema.Registry, report diag.Reporter) *Tracker {
	if report == nil {
		report = diag.Nop
	}
	return &Tracker{reg: reg, report: report, flows: make(map[model.FlowID]*model.Flow, 64)}
}

// HandleEvent folds one event into its flow if it is flow-shaped:
// branch, extend, terminate, or any type carrying a schema.FlowDataArgID
// argument.
func (tr *Tracker) HandleEvent(e *model.Event) {
	t := tr.reg.Get(e.Type)
	if t == nil {
		return
	}
	switch t.Name {
	case schema.NameFlowBranch:
		tr.branch(e, t)
	case schema.NameFlowExtend:
		tr.extend(e, t)
	case schema.NameFlowTerminate:
		tr.terminate(e, t)
	default:
		if _, ok := t.ArgIndex(schema.FlowDataArgID); ok {
			tr.data(e, t)
		}
	}
}

func (tr *Tracker) branch(e *model.Event, t *schema.Type) {
	id := tr.flowID(e, t)
	f := tr.getOrCreate(id)
	tr.checkReopen(f, id)
	if pv, ok := e.Arg(tr.reg, "parent"); ok && pv.I != 0 {
		f.Parent, f.HasParent = model.FlowID(pv.I), true
	}
	ev := *e
	f.Branch = &ev
}

func (tr *Tracker) extend(e *model.Event, t *schema.Type) {
	id := tr.flowID(e, t)
	f := tr.getOrCreate(id)
	tr.checkReopen(f, id)
	f.Extends = append(f.Extends, *e)
}

func (tr *Tracker) terminate(e *model.Event, t *schema.Type) {
	id := tr.flowID(e, t)
	f := tr.getOrCreate(id)
	tr.checkReopen(f, id)
	ev := *e
	f.Terminate = &ev
	f.Closed = true
}

func (tr *Tracker) data(e *model.Event, t *schema.Type) {
	id := tr.flowID(e, t)
	f := tr.getOrCreate(id)
	tr.checkReopen(f, id)
	f.Data = append(f.Data, *e)
}

func (tr *Tracker) checkReopen(f *model.Flow, id model.FlowID) {
	if f.Closed {
		tr.report.Report(diag.NewWarning(diag.FlowReopenedAfterClose,
			diag.Locus{}, "flow activity observed after terminate"))
	}
}

func (tr *Tracker) flowID(e *model.Event, t *schema.Type) model.FlowID {
	if v, ok := e.Arg(tr.reg, "id"); ok && v.Kind == schema.KindInt && v.I != 0 {
		return model.FlowID(v.I)
	}
	return tr.anonymousID()
}

// anonymousID mints a FlowID for a branch event that omits "id",
// truncated to 64 bits since FlowID is the same width the wire protocol
// uses for explicit ids.
func (tr *Tracker) anonymousID() model.FlowID {
	for {
		u := uuid.New()
		id := model.FlowID(binary.BigEndian.Uint64(u[:8]))
		if id != model.NoFlowID {
			return id
		}
	}
}

func (tr *Tracker) getOrCreate(id model.FlowID) *model.Flow {
	f, ok := tr.flows[id]
	if !ok {
		f = &model.Flow{ID: id}
		tr.flows[id] = f
	}
	return f
}

// Get returns the flow for id, if one has been observed.
func (tr *Tracker) Get(id model.FlowID) (*model.Flow, bool) {
	f, ok := tr.flows[id]
	return f, ok
}

// Count returns the number of distinct flows observed.
func (tr *Tracker) Count() int { return len(tr.flows) }

// GetData folds a flow's raw data-append events into a name/value map.
// A builtin wtf.flow#data.instant event (schema.FlagInternal) contributes
// exactly the pair named by its "name"/"value" arguments; a user-defined
// appender type contributes every argument except "id" under its own
// name. Later events win on key collision.
func (tr *Tracker) GetData(f *model.Flow) map[string]schema.Value {
	out := make(map[string]schema.Value, len(f.Data))
	for i := range f.Data {
		ev := &f.Data[i]
		t := tr.reg.Get(ev.Type)
		if t == nil {
			continue
		}
		if t.Flags.Has(schema.FlagInternal) {
			nameV, ok := ev.Arg(tr.reg, "name")
			if !ok {
				continue
			}
			valV, _ := ev.Arg(tr.reg, "value")
			out[nameV.S] = valV
			continue
		}
		for argI, spec := range t.Args {
			if spec.Name == "id" || argI >= len(ev.Args) {
				continue
			}
			out[spec.Name] = ev.Args[argI]
		}
	}
	return out
}
