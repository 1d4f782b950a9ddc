package diag

// Code identifies the kind of ingest or query anomaly a diagnostic reports.
type Code uint16

const (
	UnknownCode Code = 0

	// Ingest-time diagnostics, raised while reconstructing a scope forest
	// or fanning out a batch.
	UnmatchedScopeLeave    Code = 1000
	RebuildWindowExceeded  Code = 1001
	DuplicateZoneCreate    Code = 1002
	FlowReopenedAfterClose Code = 1003
	SourceParseError       Code = 1004

	// Query-time diagnostics.
	MalformedFilterRegex Code = 2000
	MalformedTreeExpr    Code = 2001
)

func (c Code) String() string {
	switch c {
	case UnmatchedScopeLeave:
		return "unmatched-scope-leave"
	case RebuildWindowExceeded:
		return "rebuild-window-exceeded"
	case DuplicateZoneCreate:
		return "duplicate-zone-create"
	case FlowReopenedAfterClose:
		return "flow-reopened-after-close"
	case SourceParseError:
		return "source-parse-error"
	case MalformedFilterRegex:
		return "malformed-filter-regex"
	case MalformedTreeExpr:
		return "malformed-tree-expr"
	default:
		return "unknown"
	}
}
