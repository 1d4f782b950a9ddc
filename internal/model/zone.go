package model

// Zone is a logical trace context (thread, process shard) identified by
// (name, type, location). Zones are discovered from wtf.zone#create
// events and are unique by that identity tuple; duplicate creates are
// ignored by the listener.
type Zone struct {
	ID       ZoneID
	Name     string
	Type     string
	Location string
}

// Key is the identity tuple the listener deduplicates zone#create events
// against.
type ZoneKey struct {
	Name, Type, Location string
}

func (z Zone) Key() ZoneKey { return ZoneKey{z.Name, z.Type, z.Location} }
