package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at     time.Time
	micros int64
	bytes  int
}

// Snapshot aggregates the render samples currently inside the window.
type Snapshot struct {
	Count      int     `json:"count"`
	InputBytes int64   `json:"input_bytes"`
	MinUs      int64   `json:"min_us"`
	MaxUs      int64   `json:"max_us"`
	AvgUs      float64 `json:"avg_us"`
	P50Us      float64 `json:"p50_us"`
	P95Us      float64 `json:"p95_us"`
	P99Us      float64 `json:"p99_us"`
}

// Window tracks recent transduction latencies over a rolling time window.
// It is safe for concurrent use.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one pass that took d over an input of n bytes.
func (w *Window) Record(d time.Duration, n int) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, micros: us, bytes: n})
}

// Time runs fn and records its duration against an input of n bytes.
func (w *Window) Time(n int, fn func()) {
	start := time.Now()
	fn()
	w.Record(time.Since(start), n)
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(w.now())
	if len(w.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, 0, len(w.samples))
	var sum, bytes int64
	for _, s := range w.samples {
		values = append(values, s.micros)
		sum += s.micros
		bytes += int64(s.bytes)
	}
	slices.Sort(values)

	return Snapshot{
		Count:      len(values),
		InputBytes: bytes,
		MinUs:      values[0],
		MaxUs:      values[len(values)-1],
		AvgUs:      float64(sum) / float64(len(values)),
		P50Us:      percentile(values, 50),
		P95Us:      percentile(values, 95),
		P99Us:      percentile(values, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*weight
}
