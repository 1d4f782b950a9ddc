// Package query implements the textual query engine: classification
// into filter/regex/tree-expression, a filter evaluator over zone
// indices, and a tree-expression evaluator over a uniform navigable-node
// view of the database.
package query

import (
	"fmt"
	"strconv"

	"tracedb/internal/frameindex"
	"tracedb/internal/ingest"
	"tracedb/internal/model"
	"tracedb/internal/schema"
)

// NodeType tags the concrete kind behind the Node capability: the query
// engine always dispatches through the capability interface, never a
// concrete type switch.
type NodeType int

const (
	NodeDatabase NodeType = iota
	NodeZone
	NodeScope
	NodeEvent
)

func (t NodeType) String() string {
	switch t {
	case NodeDatabase:
		return "database"
	case NodeZone:
		return "zone"
	case NodeScope:
		return "scope"
	case NodeEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Node is the uniform capability the database, each zone index, each
// scope, and each event expose to the tree-expression evaluator.
type Node interface {
	NodeType() NodeType
	NodeName() string
	NodeValue() string
	NodePosition() model.Position
	Parent() (Node, bool)
	Children() []Node
	Attr(name string) (string, bool)
}

// databaseNode is the tree root (position 0); its children are every
// zone index in creation order.
type databaseNode struct {
	l *ingest.Listener
}

func Root(l *ingest.Listener) Node { return databaseNode{l: l} }

func (n databaseNode) NodeType() NodeType           { return NodeDatabase }
func (n databaseNode) NodeName() string             { return "database" }
func (n databaseNode) NodeValue() string            { return "" }
func (n databaseNode) NodePosition() model.Position { return model.NoPosition }
func (n databaseNode) Parent() (Node, bool)         { return nil, false }
func (n databaseNode) Attr(name string) (string, bool) {
	switch name {
	case "totalEventCount":
		return strconv.FormatUint(n.l.TotalEventCount(), 10), true
	}
	return "", false
}
func (n databaseNode) Children() []Node {
	zones := n.l.Zones()
	out := make([]Node, 0, len(zones))
	for _, z := range zones {
		zi, ok := n.l.ZoneIndex(z.ID)
		if !ok {
			continue
		}
		out = append(out, zoneNode{db: n, zone: z, zi: zi, reg: n.l.Registry()})
	}
	return out
}

type zoneNode struct {
	db   databaseNode
	zone model.Zone
	zi   zoneIndex
	reg  *schema.Registry
}

// zoneIndex narrows *zoneindex.Index to what node construction needs,
// so this package depends on ingest and a small capability surface
// rather than reaching into zoneindex's full API.
type zoneIndex interface {
	GetRootScopes() []model.ScopeID
	Scope(id model.ScopeID) (model.Scope, bool)
	Events() []model.Event
	ForEachIndexed(tStart, tEnd int64, fn func(i int, e *model.Event))
	ScopeForEventIndex(i int) (model.Scope, bool)
	FrameIndex() *frameindex.Index
}

func (n zoneNode) NodeType() NodeType           { return NodeZone }
func (n zoneNode) NodeName() string             { return n.zone.Name }
func (n zoneNode) NodeValue() string            { return n.zone.Type }
func (n zoneNode) NodePosition() model.Position { return model.NoPosition }
func (n zoneNode) Parent() (Node, bool)         { return n.db, true }
func (n zoneNode) Attr(name string) (string, bool) {
	switch name {
	case "name":
		return n.zone.Name, true
	case "type":
		return n.zone.Type, true
	case "location":
		return n.zone.Location, true
	}
	return "", false
}

// Children yields every root scope plus every event in the zone that
// does not itself open or close a scope (flow branch/extend/terminate,
// flow data appenders, wtf.zone#create, and any other user-defined
// event) -- scope-enter/scope-leave events are already represented by
// the scope nodes they built, not duplicated as leaves here.
func (n zoneNode) Children() []Node {
	roots := n.zi.GetRootScopes()
	out := make([]Node, 0, len(roots))
	for _, id := range roots {
		sc, ok := n.zi.Scope(id)
		if !ok {
			continue
		}
		out = append(out, scopeNode{parent: n, zi: n.zi, scope: sc})
	}
	for _, e := range n.zi.Events() {
		t := n.reg.Get(e.Type)
		if t == nil || t.Flags.Has(schema.FlagScopeEnter) || t.Flags.Has(schema.FlagScopeLeave) {
			continue
		}
		out = append(out, NewEventNode(n, n.reg, e))
	}
	return out
}

type scopeNode struct {
	parent Node
	zi     zoneIndex
	scope  model.Scope
}

func (n scopeNode) NodeType() NodeType           { return NodeScope }
func (n scopeNode) NodeName() string             { return n.scope.Name }
func (n scopeNode) NodeValue() string            { return "" }
func (n scopeNode) NodePosition() model.Position { return n.scope.Enter.Position }
func (n scopeNode) Parent() (Node, bool)         { return n.parent, true }
func (n scopeNode) Attr(name string) (string, bool) {
	switch name {
	case "name":
		return n.scope.Name, true
	case "depth":
		return strconv.FormatUint(uint64(n.scope.Depth), 10), true
	case "totalDuration":
		if n.scope.HasTotalDuration {
			return strconv.FormatInt(n.scope.TotalDurationUS, 10), true
		}
	case "userDuration":
		if n.scope.HasUserDuration {
			return strconv.FormatInt(n.scope.UserDurationUS, 10), true
		}
	case "childCount":
		return strconv.Itoa(n.scope.ChildCount()), true
	}
	return "", false
}
func (n scopeNode) Children() []Node {
	out := make([]Node, 0, len(n.scope.Children))
	for _, id := range n.scope.Children {
		sc, ok := n.zi.Scope(id)
		if !ok {
			continue
		}
		out = append(out, scopeNode{parent: n, zi: n.zi, scope: sc})
	}
	return out
}

// EventNode wraps a single event for the tree-expression evaluator and
// for the filter path's result sequence; events have no children.
type EventNode struct {
	parent Node
	reg    *schema.Registry
	event  model.Event
}

func NewEventNode(parent Node, reg *schema.Registry, e model.Event) EventNode {
	return EventNode{parent: parent, reg: reg, event: e}
}

func (n EventNode) Event() model.Event           { return n.event }
func (n EventNode) NodeType() NodeType           { return NodeEvent }
func (n EventNode) NodeValue() string            { return "" }
func (n EventNode) NodePosition() model.Position { return n.event.Position }
func (n EventNode) Parent() (Node, bool)         { return n.parent, n.parent != nil }
func (n EventNode) Children() []Node             { return nil }
func (n EventNode) NodeName() string {
	if t := n.reg.Get(n.event.Type); t != nil {
		return t.Name
	}
	return fmt.Sprintf("type#%d", n.event.Type)
}
func (n EventNode) Attr(name string) (string, bool) {
	v, ok := n.event.Arg(n.reg, name)
	if !ok {
		return "", false
	}
	return v.Text(), true
}
