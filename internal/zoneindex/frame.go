package zoneindex

import "tracedb/internal/frameindex"

// FrameIndex builds this zone's frame sequence from its current root
// scopes. Callers should rebuild after any batch that changed this
// zone rather than cache across batches.
func (ix *Index) FrameIndex() *frameindex.Index {
	return frameindex.Build(ix)
}
