package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"tracedb/internal/diag"
)

// printDiagnostics renders a diagnostic bag one line per entry, sorted
// by zone/time/severity, colorized by severity when useColor is set,
// truncated to maxDiagnostics entries. One severity-colored line per
// diagnostic; ingest diagnostics have no source span to frame.
func printDiagnostics(out io.Writer, bag *diag.Bag, useColor bool, maxDiagnostics int) {
	bag.Sort()
	items := bag.Items()
	n := len(items)
	if maxDiagnostics > 0 && n > maxDiagnostics {
		n = maxDiagnostics
	}
	for _, d := range items[:n] {
		label := severityLabel(d.Severity, useColor)
		loc := d.At.Zone
		if loc == "" {
			fmt.Fprintf(out, "%s [%s] %s\n", label, d.Code, d.Message)
			continue
		}
		fmt.Fprintf(out, "%s [%s] %s: %s (t=%d)\n", label, d.Code, loc, d.Message, d.At.Time)
	}
	if len(items) > n {
		fmt.Fprintf(out, "... %d more diagnostics suppressed\n", len(items)-n)
	}
}

func severityLabel(sev diag.Severity, useColor bool) string {
	text := sev.String()
	if !useColor {
		return text
	}
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(text)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold).Sprint(text)
	default:
		return color.New(color.FgCyan).Sprint(text)
	}
}
