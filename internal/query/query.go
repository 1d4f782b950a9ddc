package query

import (
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"tracedb/internal/diag"
	"tracedb/internal/ingest"
	"tracedb/internal/metrics"
	"tracedb/internal/model"
	"tracedb/internal/observ"
	"tracedb/internal/schema"
)

// ResultItem is one filter/regex match: either a raw event, or, when
// the matching event is a SCOPE_ENTER, its reconstructed scope.
type ResultItem struct {
	IsScope bool
	Event   model.Event
	Scope   model.Scope
}

func (it ResultItem) Time() int64 {
	if it.IsScope {
		return it.Scope.Enter.Time
	}
	return it.Event.Time
}

func (it ResultItem) Position() model.Position {
	if it.IsScope {
		return it.Scope.Enter.Position
	}
	return it.Event.Position
}

// Result is the database's answer to one query() call: the original
// expression, its compiled form, evaluation duration, and the result
// sequence.
type Result struct {
	Expression string
	Compiled   string
	Kind       Kind
	DurationMS float64

	// Items holds filter/regex matches; Nodes holds tree-expression
	// matches. Exactly one is populated depending on Kind.
	Items []ResultItem
	Nodes []Node
}

// Run classifies expr and evaluates it against l's current snapshot.
// Callers must not call Run concurrently with an in-flight ingest batch;
// reads only happen between batches.
func Run(l *ingest.Listener, expr string) (*Result, error) {
	start := time.Now()
	kind, body, flags := classify(expr)

	switch kind {
	case KindFilter, KindRegex:
		ev, err := Compile(kind, body, flags)
		if err != nil {
			diag.ReportError(l, diag.MalformedFilterRegex, diag.Locus{}, err.Error()).Emit()
			return nil, err
		}
		items, err := runFilter(l, ev)
		if err != nil {
			return nil, err
		}
		res := &Result{Expression: expr, Compiled: body, Kind: kind, Items: items}
		res.DurationMS = observ.Since(start)
		metrics.QueryDuration.WithLabelValues(kindLabel(kind)).Observe(res.DurationMS)
		return res, nil

	default:
		nodes, err := EvalTree(Root(l), expr)
		if err != nil {
			diag.ReportError(l, diag.MalformedTreeExpr, diag.Locus{}, err.Error()).Emit()
			return nil, err
		}
		res := &Result{Expression: expr, Compiled: expr, Kind: KindTree, Nodes: nodes}
		res.DurationMS = observ.Since(start)
		metrics.QueryDuration.WithLabelValues("tree").Observe(res.DurationMS)
		return res, nil
	}
}

func kindLabel(k Kind) string {
	if k == KindRegex {
		return "regex"
	}
	return "filter"
}

// runFilter iterates every zone index over the full time range in
// parallel: one goroutine per zone, index-addressed result slots so no
// mutex is needed, golang.org/x/sync/errgroup for the bounded fan-out.
// Safe because no ingest batch is in flight while a query runs.
func runFilter(l *ingest.Listener, ev Evaluator) ([]ResultItem, error) {
	zones := l.ZoneIndices()
	perZone := make([][]ResultItem, len(zones))

	g := new(errgroup.Group)
	g.SetLimit(max(1, runtime.GOMAXPROCS(0)))
	reg := l.Registry()

	for i, zi := range zones {
		i, zi := i, zi
		g.Go(func() error {
			var local []ResultItem
			zi.ForEachIndexed(math.MinInt64, math.MaxInt64, func(idx int, e *model.Event) {
				// Internal events never surface in results; leave events
				// are already represented by the scope their matching
				// enter reconstructed, so they are not reported twice.
				t := reg.Get(e.Type)
				if t != nil && (t.Flags.Has(schema.FlagInternal) || t.Flags.Has(schema.FlagScopeLeave)) {
					return
				}
				if ev != nil && !ev(reg, e) {
					return
				}
				if sc, ok := zi.ScopeForEventIndex(idx); ok {
					local = append(local, ResultItem{IsScope: true, Scope: sc})
				} else {
					local = append(local, ResultItem{Event: *e})
				}
			})
			perZone[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []ResultItem
	for _, r := range perZone {
		merged = append(merged, r...)
	}
	sort.SliceStable(merged, func(a, b int) bool {
		ia, ib := merged[a], merged[b]
		if ia.Time() != ib.Time() {
			return ia.Time() < ib.Time()
		}
		return ia.Position() < ib.Position()
	})
	return merged, nil
}
