// Package stats aggregates navigation outcomes over a rolling window.
package stats

import (
	"sort"
	"sync"
	"time"
)

// Outcome is one finished navigation request as seen by the stats layer.
type Outcome struct {
	Duration time.Duration
	Failed   bool
	Retried  bool
	Match    string // tier that matched, empty on failure
}

type sample struct {
	timestamp  time.Time
	durationMs int64
	failed     bool
	retried    bool
	match      string
}

// Snapshot is a point-in-time aggregate of navigation samples.
type Snapshot struct {
	Count     int            `json:"count"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Retried   int            `json:"retried"`
	ByMatch   map[string]int `json:"by_match"`
	MinMs     int64          `json:"min_ms"`
	MaxMs     int64          `json:"max_ms"`
	AvgMs     float64        `json:"avg_ms"`
	P50Ms     float64        `json:"p50_ms"`
	P95Ms     float64        `json:"p95_ms"`
	P99Ms     float64        `json:"p99_ms"`
}

// Navigation tracks recent navigation latencies and outcomes within a
// rolling window.
type Navigation struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewNavigation(maxAge time.Duration) *Navigation {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Navigation{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *Navigation) Record(o Outcome) {
	ms := o.Duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: ms,
		failed:     o.Failed,
		retried:    o.Retried,
		match:      o.Match,
	})
}

func (s *Navigation) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := Snapshot{ByMatch: map[string]int{}}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			snap.Failed++
		} else {
			snap.Succeeded++
		}
		if sm.retried {
			snap.Retried++
		}
		if sm.match != "" {
			snap.ByMatch[sm.match]++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Navigation) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile interpolates linearly between the closest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
