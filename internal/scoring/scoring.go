// Package scoring computes relevance scores for document sections
// against a persona and task, with two selectable modes: a composite
// heuristic blend and a batched best-chunk semantic score.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docrank/internal/section"
)

// ErrValidation indicates the request is missing required inputs and
// must not be partially processed.
var ErrValidation = errors.New("invalid analysis request")

// Mode selects the primary ranking signal.
type Mode string

const (
	// ModeBestChunk scores each section by its best paragraph chunk's
	// semantic similarity, keeping that chunk as the representative
	// excerpt. One batch encode for all chunks makes this the
	// throughput-friendly default.
	ModeBestChunk Mode = "chunk"
	// ModeComposite blends semantic similarity with persona, task and
	// structural heuristics.
	ModeComposite Mode = "composite"
)

// Candidate is a scored section. Immutable once scored.
type Candidate struct {
	Document     string
	PageNumber   int
	SectionTitle string
	Score        float64
	// RefinedText is the representative excerpt (best chunk) under
	// ModeBestChunk; empty under ModeComposite.
	RefinedText string
}

// Scorer scores a merged section list against the persona and task.
// Implementations drop candidates whose encoding fails rather than
// failing the run.
type Scorer interface {
	ScoreSections(ctx context.Context, sections []section.Section, persona, task string) ([]Candidate, error)
}

// Validate rejects requests with no persona, no task, or no
// documents. These are fatal; everything downstream assumes them.
func Validate(persona, task string, documents int) error {
	if strings.TrimSpace(persona) == "" {
		return fmt.Errorf("%w: persona is required", ErrValidation)
	}
	if strings.TrimSpace(task) == "" {
		return fmt.Errorf("%w: task is required", ErrValidation)
	}
	if documents == 0 {
		return fmt.Errorf("%w: at least one document is required", ErrValidation)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
