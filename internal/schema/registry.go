// Package schema interns event-type schemas: a fully-qualified name, an
// ordered argument spec, and a classification bitset. A name is interned
// to a dense TypeID once, so the ingest hot path compares ids, never
// strings.
package schema

import "fmt"

// Flags classifies an event type for the ingest/query fast paths.
type Flags uint8

const (
	// FlagInternal marks events excluded from user totals and from
	// filter-query result sets, but still indexed (they may be needed
	// structurally, e.g. zone#create).
	FlagInternal Flags = 1 << iota
	// FlagScopeEnter marks a scope#enter-shaped event.
	FlagScopeEnter
	// FlagScopeLeave marks a scope#leave-shaped event.
	FlagScopeLeave
	// FlagBuiltin marks a type pre-registered by the core rather than
	// declared by a source adapter.
	FlagBuiltin
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// TypeID is a stable handle to an interned Type, assigned densely from 1;
// 0 (NoTypeID) is reserved.
type TypeID uint32

const NoTypeID TypeID = 0

// ArgSpec names one positional argument slot and its value kind.
type ArgSpec struct {
	Name string
	Kind ArgKind
}

// Type is an interned event schema: name, argument layout, flags.
type Type struct {
	ID    TypeID
	Name  string
	Args  []ArgSpec
	Flags Flags

	argIndex map[string]int
}

// ArgIndex resolves an argument name to its positional slot in an Event's
// Args slice, or false if the type carries no such argument.
func (t *Type) ArgIndex(name string) (int, bool) {
	i, ok := t.argIndex[name]
	return i, ok
}

// Registry interns Types by name, returning a stable TypeID on first
// sight. Lookup by name is O(1); the registry must be populated by the
// source adapter before any event references a type.
type Registry struct {
	byName map[string]TypeID
	byID   []*Type // index 0 unused (NoTypeID)
}

// NewRegistry builds a registry with the fixed built-in types
// pre-registered in a stable order, so every registry instance assigns
// the same TypeID to the same built-in name without needing a shared
// global table.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]TypeID, 16),
		byID:   make([]*Type, 1, 16), // byID[0] reserved for NoTypeID
	}
	for _, b := range builtinTypes {
		r.Register(b.Name, b.Args, b.Flags)
	}
	return r
}

// Register interns name on first sight and returns its TypeID. A second
// call with the same name returns the existing id; its args/flags are not
// overwritten (idempotent, per EventIndex/Registry semantics elsewhere in
// the ingest path).
func (r *Registry) Register(name string, args []ArgSpec, flags Flags) TypeID {
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := TypeID(len(r.byID))
	idx := make(map[string]int, len(args))
	for i, a := range args {
		idx[a.Name] = i
	}
	t := &Type{ID: id, Name: name, Args: args, Flags: flags, argIndex: idx}
	r.byID = append(r.byID, t)
	r.byName[name] = id
	return id
}

// Lookup resolves a type name to its TypeID.
func (r *Registry) Lookup(name string) (TypeID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Get returns the Type for id, or nil if id is out of range.
func (r *Registry) Get(id TypeID) *Type {
	if id == NoTypeID || int(id) >= len(r.byID) {
		return nil
	}
	return r.byID[id]
}

// MustGet panics on an invalid id; used on the hot path once the caller
// has already validated the id came from this registry.
func (r *Registry) MustGet(id TypeID) *Type {
	t := r.Get(id)
	if t == nil {
		panic(fmt.Errorf("schema: invalid type id %d", id))
	}
	return t
}

// Len reports the number of interned types, excluding the NoTypeID slot.
func (r *Registry) Len() int { return len(r.byID) - 1 }
