package diag

// ReportBuilder accumulates a diagnostic's fields before emitting it to a
// Reporter exactly once.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, at Locus, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: Diagnostic{Severity: sev, Code: code, At: at, Message: msg}}
}

func ReportError(r Reporter, code Code, at Locus, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, at, msg)
}

func ReportWarning(r Reporter, code Code, at Locus, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, at, msg)
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}
