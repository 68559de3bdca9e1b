// Package embeddings provides text embedding generation backed by
// local ONNX models, plus the similarity measure used for ranking.
package embeddings

import (
	"context"
	"errors"
	"log/slog"
	"math"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates the underlying model failed to
	// produce a vector.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder generates fixed-length vector representations of text.
// EmbedDocuments is the batch path and should be preferred; the
// per-call overhead of the inference engine dominates otherwise.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// BatchWithFallback encodes all texts in one call, falling back to
// per-text encoding when the batch fails so that a single degenerate
// text only drops its own slot. nil marks a dropped slot. Context
// cancellation is still fatal.
func BatchWithFallback(ctx context.Context, e Embedder, texts []string, log *slog.Logger) ([][]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, texts)
	if err == nil && len(vecs) == len(texts) {
		return vecs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if log != nil {
		log.Warn("batch encode failed, retrying per text", "error", err)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedDocuments(ctx, []string{text})
		if err != nil || len(vec) == 0 {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		out[i] = vec[0]
	}
	return out, nil
}

// CosineSimilarity returns the cosine of the angle between two
// vectors, or 0 for mismatched or zero-magnitude inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
