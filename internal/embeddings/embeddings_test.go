package embeddings

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CosineSimilarity(c.a, c.b)
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCosineSimilarity_ScaleInvariant(t *testing.T) {
	a := []float32{0.3, -0.5, 0.8}
	b := []float32{0.6, -1.0, 1.6}
	got := CosineSimilarity(a, b)
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("scaled vectors should have similarity 1, got %v", got)
	}
}

func TestEmbedStats_Snapshot(t *testing.T) {
	s := NewEmbedStats(time.Hour)
	for _, ms := range []int64{10, 20, 30, 40, 50} {
		s.Record(ms)
	}
	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected 5 samples, got %d", snap.Count)
	}
	if snap.MinMs != 10 || snap.MaxMs != 50 {
		t.Errorf("min/max = %d/%d, want 10/50", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 30 {
		t.Errorf("avg = %v, want 30", snap.AvgMs)
	}
	if snap.P50Ms != 30 {
		t.Errorf("p50 = %v, want 30", snap.P50Ms)
	}
}

func TestEmbedStats_Empty(t *testing.T) {
	s := NewEmbedStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestEmbedStats_NegativeClamped(t *testing.T) {
	s := NewEmbedStats(time.Hour)
	s.Record(-5)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("negative duration should clamp to 0, got %d", snap.MinMs)
	}
}

// flakyBatcher fails whole batches containing failOn; single-text
// calls fail only for the offending text.
type flakyBatcher struct {
	failOn string
}

func (e *flakyBatcher) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (e *flakyBatcher) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if e.failOn != "" && strings.Contains(t, e.failOn) {
			return nil, errors.New("boom")
		}
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func TestBatchWithFallback_HealthyBatch(t *testing.T) {
	vecs, err := BatchWithFallback(context.Background(), &flakyBatcher{}, []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 || vecs[0] == nil || vecs[1] == nil {
		t.Fatalf("expected 2 vectors, got %v", vecs)
	}
}

func TestBatchWithFallback_DropsOnlyFailingSlot(t *testing.T) {
	vecs, err := BatchWithFallback(context.Background(), &flakyBatcher{failOn: "bad"},
		[]string{"good one", "bad one", "another good"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(vecs))
	}
	if vecs[0] == nil || vecs[2] == nil {
		t.Error("healthy texts should keep their vectors")
	}
	if vecs[1] != nil {
		t.Error("failing text should be a nil slot")
	}
}

func TestBatchWithFallback_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BatchWithFallback(ctx, &flakyBatcher{failOn: "bad"}, []string{"bad"}, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
