package observ_test

import (
	"testing"
	"time"

	"tracedb/internal/observ"
)

// TestReportAccumulatesPhases checks Begin/End bookkeeping surfaces in
// Report with the total equal to the sum of its phases.
func TestReportAccumulatesPhases(t *testing.T) {
	tm := observ.NewTimer()
	i1 := tm.Begin("parse")
	time.Sleep(time.Millisecond)
	tm.End(i1, "ok")
	i2 := tm.Begin("index")
	time.Sleep(time.Millisecond)
	tm.End(i2, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Note != "ok" {
		t.Fatalf("unexpected phase 0: %+v", report.Phases[0])
	}
	if report.TotalMS == 0 {
		t.Fatalf("expected a non-zero total duration")
	}
}

// TestEndOutOfRangeIsNoOp checks an invalid phase index is ignored rather
// than panicking.
func TestEndOutOfRangeIsNoOp(t *testing.T) {
	tm := observ.NewTimer()
	tm.End(5, "ignored")
	tm.End(-1, "ignored")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("expected no phases to be recorded")
	}
}

// TestEmptyTimerReportsZeroValue checks Report on an untouched Timer.
func TestEmptyTimerReportsZeroValue(t *testing.T) {
	tm := observ.NewTimer()
	report := tm.Report()
	if report.TotalMS != 0 || len(report.Phases) != 0 {
		t.Fatalf("expected zero-value report, got %+v", report)
	}
}

// TestSinceReportsPositiveMillis checks the single-shot helper.
func TestSinceReportsPositiveMillis(t *testing.T) {
	start := time.Now()
	time.Sleep(time.Millisecond)
	if observ.Since(start) <= 0 {
		t.Fatalf("expected a positive duration")
	}
}
