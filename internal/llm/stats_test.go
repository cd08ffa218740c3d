package llm

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record("groq", 100, false)
	stats.Record("groq", 200, false)
	stats.Record("groq", 300, false)
	stats.Record("groq", 400, false)
	stats.Record("groq", 500, false)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.Record("groq", 100, false)
	time.Sleep(25 * time.Millisecond)

	snap := stats.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record("groq", 200, false)
	snap = stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record("groq", -10, false)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestStatsByProvider(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.Record("groq", 100, false)
	stats.Record("groq", 300, true)
	stats.Record("gemini", 50, false)

	snap := stats.Snapshot()
	if snap.Count != 3 || snap.Errors != 1 {
		t.Fatalf("expected count=3 errors=1, got count=%d errors=%d", snap.Count, snap.Errors)
	}
	groq, ok := snap.ByProvider["groq"]
	if !ok {
		t.Fatal("expected groq breakdown")
	}
	if groq.Count != 2 || groq.AvgMs != 200 || groq.Errors != 1 {
		t.Fatalf("unexpected groq snapshot: %+v", groq)
	}
	if snap.ByProvider["gemini"].MaxMs != 50 {
		t.Fatalf("expected gemini max=50, got %d", snap.ByProvider["gemini"].MaxMs)
	}
}
