// Package model defines the canonical value objects ingested events are
// turned into: Event, Zone, Scope, Flow, and the arena-style ids that
// reference them.
//
// Ids are handles into compact slabs, zero reserved as "no id": parents
// own children by value, children reference parents by id, so there is
// no pointer cycle and renumbering is a linear pass over a slice.
package model

// Position is the dense, global, 1-based event ordinal assigned on every
// endBatch. Position 0 is reserved for the database root in
// the query engine's virtual node tree.
type Position uint64

const NoPosition Position = 0

// ZoneID identifies a Zone in the database's zone arena.
type ZoneID uint32

const NoZoneID ZoneID = 0

func (id ZoneID) IsValid() bool { return id != NoZoneID }

// ScopeID identifies a Scope within its owning ZoneIndex's scope arena.
// Scope ids are only unique within one zone, never globally -- cross-zone
// scope parenting does not occur.
type ScopeID uint32

const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// FlowID identifies a Flow. It is session-unique: either the numeric id
// carried by the branch event's "id" argument, or -- for a branch that
// omits one -- a generated id (see flow.Tracker.anonymousID).
type FlowID uint64

const NoFlowID FlowID = 0

func (id FlowID) IsValid() bool { return id != NoFlowID }
