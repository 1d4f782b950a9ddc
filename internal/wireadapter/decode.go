package wireadapter

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Decoder reads Frames one at a time off an underlying stream.
type Decoder struct {
	dec *msgpack.Decoder
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: msgpack.NewDecoder(r)}
}

// Next decodes the next frame, returning io.EOF once the stream is
// exhausted.
func (d *Decoder) Next() (*Frame, error) {
	var f Frame
	if err := d.dec.Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
