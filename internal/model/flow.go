package model

// Flow correlates asynchronous work by a session-unique FlowID: a branch
// event (first), zero or more extend events (middle), an optional
// terminate event (last), and a list of data-append events materialized
// into a key/value map on demand.
type Flow struct {
	ID     FlowID
	Parent FlowID
	// HasParent distinguishes "root flow" from "parent id 0", since 0 is
	// also NoFlowID's zero value.
	HasParent bool

	Branch    *Event
	Extends   []Event
	Terminate *Event
	// Data holds the raw data-append events in arrival order; GetData
	// folds them into a map (see internal/flow).
	Data []Event

	Closed bool
}
