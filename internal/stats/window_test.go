package stats

import (
	"testing"
	"time"
)

func TestWindowSnapshotPercentiles(t *testing.T) {
	w := NewWindow(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		w.Record(time.Duration(us)*time.Microsecond, 10)
	}

	snap := w.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.InputBytes != 50 {
		t.Fatalf("expected input_bytes=50, got %d", snap.InputBytes)
	}
	if snap.MinUs != 100 || snap.MaxUs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if snap.P95Us != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if snap.P99Us != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
}

func TestWindowPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	w := NewWindow(time.Minute)
	w.now = func() time.Time { return now }

	w.Record(100*time.Microsecond, 1)
	now = now.Add(2 * time.Minute)

	if snap := w.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	w.Record(200*time.Microsecond, 1)
	snap := w.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinUs != 200 || snap.MaxUs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

func TestWindowRecordClampsNegativeDuration(t *testing.T) {
	w := NewWindow(time.Hour)
	w.Record(-10*time.Microsecond, 0)
	snap := w.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
}

func TestWindowTime(t *testing.T) {
	w := NewWindow(time.Hour)
	ran := false
	w.Time(7, func() { ran = true })
	if !ran {
		t.Fatalf("expected fn to run")
	}
	if snap := w.Snapshot(); snap.Count != 1 || snap.InputBytes != 7 {
		t.Fatalf("expected one sample of 7 bytes, got %+v", snap)
	}
}
