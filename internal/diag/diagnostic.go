package diag

// Locus pins a diagnostic to the zone and approximate event position it
// came from. Unlike a compiler's file/line span, ingest diagnostics only
// ever have a zone name and, optionally, a timestamp -- there is no
// source text to point into.
type Locus struct {
	Zone     string
	Time     int64 // microseconds, 0 if not applicable
	Position uint64
}

// Diagnostic is a single recoverable anomaly surfaced during ingest or
// query evaluation.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	At       Locus
}

func New(sev Severity, code Code, at Locus, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Message: msg, At: at}
}

func NewError(code Code, at Locus, msg string) Diagnostic {
	return New(SevError, code, at, msg)
}

func NewWarning(code Code, at Locus, msg string) Diagnostic {
	return New(SevWarning, code, at, msg)
}
