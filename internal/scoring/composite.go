package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docrank/internal/embeddings"
	"github.com/dgallion1/docrank/internal/section"
)

// Weights blends the four composite sub-scores. Each sub-score is
// normalized to [0,1] before weighting.
type Weights struct {
	Semantic   float64
	Persona    float64
	Task       float64
	Structural float64
}

// DefaultWeights returns the production blend.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.40, Persona: 0.25, Task: 0.25, Structural: 0.10}
}

// CompositeScorer implements ModeComposite: a weighted sum of
// semantic similarity, persona alignment, task relevance and
// structural importance per section.
type CompositeScorer struct {
	embedder embeddings.Embedder
	weights  Weights
	tables   Tables
	log      *slog.Logger
}

func NewCompositeScorer(embedder embeddings.Embedder, weights Weights, tables Tables, log *slog.Logger) *CompositeScorer {
	return &CompositeScorer{embedder: embedder, weights: weights, tables: tables, log: log}
}

// ScoreSections scores each section against the persona/task query.
// Sections whose embedding fails are dropped with a warning.
func (s *CompositeScorer) ScoreSections(ctx context.Context, sections []section.Section, persona, task string) ([]Candidate, error) {
	if len(sections) == 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, DescriptiveQuery(persona, task))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	texts := make([]string, len(sections))
	for i, sec := range sections {
		texts[i] = sec.Text
	}
	vecs, err := embeddings.BatchWithFallback(ctx, s.embedder, texts, s.log)
	if err != nil {
		return nil, err
	}

	terms := TaskKeyTerms(task, s.tables)

	var candidates []Candidate
	for i, sec := range sections {
		if vecs[i] == nil {
			if s.log != nil {
				s.log.Warn("dropping section, encoding failed",
					"document", sec.Document, "section", sec.Title)
			}
			continue
		}
		semantic := clamp01(embeddings.CosineSimilarity(queryVec, vecs[i]))
		score := s.weights.Semantic*semantic +
			s.weights.Persona*PersonaAlignment(sec.Text, persona, s.tables) +
			s.weights.Task*TaskRelevance(sec.Text, terms) +
			s.weights.Structural*StructuralImportance(sec.Title, sec.StartPage, s.tables)

		candidates = append(candidates, Candidate{
			Document:     sec.Document,
			PageNumber:   sec.StartPage,
			SectionTitle: sec.Title,
			Score:        score,
		})
	}
	return candidates, nil
}

// PersonaAlignment matches the text against the keyword sets of every
// archetype named inside the persona string and returns the best
// keyword-coverage fraction, or 0 when no archetype matches.
func PersonaAlignment(text, persona string, tables Tables) float64 {
	lowerText := strings.ToLower(text)
	lowerPersona := strings.ToLower(persona)

	best := 0.0
	for archetype, keywords := range tables.PersonaKeywords {
		if !strings.Contains(lowerPersona, archetype) || len(keywords) == 0 {
			continue
		}
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lowerText, kw) {
				hits++
			}
		}
		if frac := float64(hits) / float64(len(keywords)); frac > best {
			best = frac
		}
	}
	return best
}

// TaskRelevance is the fraction of task key terms present in the
// text.
func TaskRelevance(text string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

// StructuralImportance rewards sections that open the document or
// carry a high-value title. Base 0.5, +0.2 within the first 5 pages,
// +0.1 for the first matching title keyword, capped at 1.
func StructuralImportance(title string, startPage int, tables Tables) float64 {
	score := 0.5
	if startPage >= 1 && startPage <= 5 {
		score += 0.2
	}
	lower := strings.ToLower(title)
	for _, kw := range tables.StructuralKeywords {
		if strings.Contains(lower, kw) {
			score += 0.1
			break
		}
	}
	return clamp01(score)
}
