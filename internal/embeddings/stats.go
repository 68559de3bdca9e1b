package embeddings

import (
	"context"
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// StatsSnapshot is a point-in-time aggregate of embedding call
// latencies.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// EmbedStats tracks recent embedding call latencies within a rolling
// window.
type EmbedStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewEmbedStats(maxAge time.Duration) *EmbedStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &EmbedStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *EmbedStats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{timestamp: now, durationMs: durationMs})
}

func (s *EmbedStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	durations := make([]int64, len(s.samples))
	var sum int64
	min := s.samples[0].durationMs
	max := s.samples[0].durationMs
	for i, smp := range s.samples {
		durations[i] = smp.durationMs
		sum += smp.durationMs
		if smp.durationMs < min {
			min = smp.durationMs
		}
		if smp.durationMs > max {
			max = smp.durationMs
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return StatsSnapshot{
		Count: len(durations),
		MinMs: min,
		MaxMs: max,
		AvgMs: float64(sum) / float64(len(durations)),
		P50Ms: percentile(durations, 0.50),
		P95Ms: percentile(durations, 0.95),
		P99Ms: percentile(durations, 0.99),
	}
}

func (s *EmbedStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := s.samples[:0]
	for _, smp := range s.samples {
		if smp.timestamp.After(cutoff) {
			keep = append(keep, smp)
		}
	}
	s.samples = keep
}

func percentile(sorted []int64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[len(sorted)-1])
	}
	frac := rank - float64(lower)
	return float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac
}

// Instrumented wraps an Embedder, recording per-call latency.
type Instrumented struct {
	inner Embedder
	stats *EmbedStats
}

func NewInstrumented(inner Embedder, stats *EmbedStats) *Instrumented {
	return &Instrumented{inner: inner, stats: stats}
}

func (i *Instrumented) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := i.inner.EmbedQuery(ctx, text)
	i.stats.Record(time.Since(start).Milliseconds())
	return vec, err
}

func (i *Instrumented) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := i.inner.EmbedDocuments(ctx, texts)
	i.stats.Record(time.Since(start).Milliseconds())
	return vecs, err
}

// Stats exposes the underlying tracker.
func (i *Instrumented) Stats() *EmbedStats { return i.stats }
