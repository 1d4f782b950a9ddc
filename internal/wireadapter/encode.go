package wireadapter

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoder writes a sequence of Frames to an underlying stream, one
// msgpack value per frame -- the "framed" part of the format, since the
// decoder reads exactly one value per Next() call rather than one big
// slice-of-frames payload. This lets a producer emit frames as it goes
// (e.g. per batch) without buffering the whole run in memory.
type Encoder struct {
	enc *msgpack.Encoder
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: msgpack.NewEncoder(w)}
}

// Encode writes one frame.
func (e *Encoder) Encode(f Frame) error {
	return e.enc.Encode(&f)
}

// SourceAdded is a convenience wrapper for a KindSourceAdded frame.
func (e *Encoder) SourceAdded(name string, timebaseUS int64) error {
	return e.Encode(Frame{Kind: KindSourceAdded, SourceName: name, TimebaseUS: timebaseUS})
}

// BeginBatch is a convenience wrapper for a KindBeginBatch frame.
func (e *Encoder) BeginBatch() error {
	return e.Encode(Frame{Kind: KindBeginBatch})
}

// Event is a convenience wrapper for a KindEvent frame.
func (e *Encoder) Event(zoneName, zoneType, zoneLocation, typeName string, t int64, args []Arg) error {
	return e.Encode(Frame{
		Kind: KindEvent, ZoneName: zoneName, ZoneType: zoneType, ZoneLocation: zoneLocation,
		TypeName: typeName, Time: t, Args: args,
	})
}

// EndBatch is a convenience wrapper for a KindEndBatch frame.
func (e *Encoder) EndBatch() error {
	return e.Encode(Frame{Kind: KindEndBatch})
}

// SourceError is a convenience wrapper for a KindSourceError frame.
func (e *Encoder) SourceError(message, detail string) error {
	return e.Encode(Frame{Kind: KindSourceError, Message: message, Detail: detail})
}
