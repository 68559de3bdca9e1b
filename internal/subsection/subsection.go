// Package subsection decomposes top-ranked sections into finer
// units, rescores them against the persona/task query, and produces
// extractively refined excerpts.
package subsection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/docsource"
	"github.com/dgallion1/docrank/internal/embeddings"
	"github.com/dgallion1/docrank/internal/ranking"
	"github.com/dgallion1/docrank/internal/scoring"
	"github.com/dgallion1/docrank/internal/section"
)

// Subsection is one refined sub-unit of a ranked section. Score is
// internal; callers expose only document, text and page.
type Subsection struct {
	Document   string
	PageNumber int
	Text       string
	Score      float64
}

// Config bounds the analysis.
type Config struct {
	// TopSections caps how many ranked sections are analyzed.
	TopSections int
	// TopSubsections caps the merged output.
	TopSubsections int
	// WindowPages extends each section's window past its start page to
	// recover content the segmenter's character cap may have cut.
	WindowPages int
	// SimilarityThreshold drops units at or below this similarity.
	SimilarityThreshold float64

	// Sub-unit merge thresholds, in words.
	ShortUnit int
	LongUnit  int
	MinUnit   int

	// Refinement bounds.
	MinSentenceLen int
	TopSentences   int
	MaxRefinedLen  int
	FallbackLen    int
}

// DefaultConfig returns the production analysis bounds.
func DefaultConfig() Config {
	return Config{
		TopSections:         5,
		TopSubsections:      10,
		WindowPages:         2,
		SimilarityThreshold: 0.3,
		ShortUnit:           10,
		LongUnit:            50,
		MinUnit:             20,
		MinSentenceLen:      20,
		TopSentences:        3,
		MaxRefinedLen:       400,
		FallbackLen:         300,
	}
}

// Analyzer rescopes and refines the top ranked sections.
type Analyzer struct {
	embedder embeddings.Embedder
	cfg      Config
	tables   scoring.Tables
	log      *slog.Logger
}

func NewAnalyzer(embedder embeddings.Embedder, cfg Config, tables scoring.Tables, log *slog.Logger) *Analyzer {
	if cfg.TopSections <= 0 {
		cfg.TopSections = 5
	}
	if cfg.TopSubsections <= 0 {
		cfg.TopSubsections = 10
	}
	return &Analyzer{embedder: embedder, cfg: cfg, tables: tables, log: log}
}

// Analyze re-extracts a bounded text window for each of the top
// ranked sections, splits it into merge-aware sub-units, keeps the
// units similar enough to the persona/task query, refines each
// extractively, and returns the best units across all sections.
func (a *Analyzer) Analyze(ctx context.Context, docs map[string]docsource.Document, ranked []ranking.RankedResult, persona, task string) ([]Subsection, error) {
	if len(ranked) > a.cfg.TopSections {
		ranked = ranked[:a.cfg.TopSections]
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	type unitRef struct {
		document string
		page     int
		text     string
	}
	var units []unitRef
	for _, r := range ranked {
		doc, ok := docs[r.Document]
		if !ok {
			continue
		}
		window := a.windowText(doc, r.PageNumber)
		for _, u := range a.splitUnits(window) {
			units = append(units, unitRef{document: r.Document, page: r.PageNumber, text: u})
		}
	}
	if len(units) == 0 {
		return nil, nil
	}

	queryVec, err := a.embedder.EmbedQuery(ctx, scoring.DescriptiveQuery(persona, task))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.text
	}
	vecs, err := embeddings.BatchWithFallback(ctx, a.embedder, texts, a.log)
	if err != nil {
		return nil, fmt.Errorf("encoding sub-units: %w", err)
	}

	terms := scoring.TaskKeyTerms(task, a.tables)

	var out []Subsection
	for i, u := range units {
		if vecs[i] == nil {
			if a.log != nil {
				a.log.Warn("dropping sub-unit, encoding failed", "document", u.document)
			}
			continue
		}
		sim := embeddings.CosineSimilarity(queryVec, vecs[i])
		if sim <= a.cfg.SimilarityThreshold {
			continue
		}
		out = append(out, Subsection{
			Document:   u.document,
			PageNumber: u.page,
			Text:       a.refine(u.text, terms),
			Score:      sim,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > a.cfg.TopSubsections {
		out = out[:a.cfg.TopSubsections]
	}
	return out, nil
}

// windowText reads the section's own page plus the next WindowPages
// pages, normalized.
func (a *Analyzer) windowText(doc docsource.Document, startPage int) string {
	var buf strings.Builder
	end := startPage + a.cfg.WindowPages
	if end > doc.PageCount() {
		end = doc.PageCount()
	}
	for page := startPage; page <= end; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}
	return section.Normalize(buf.String())
}

// splitUnits breaks text into merge-aware sub-units: short paragraphs
// accumulate onto the running buffer, long paragraphs are emitted
// immediately as their own unit, and normal paragraphs close the
// buffer. Units under MinUnit words are discarded.
func (a *Analyzer) splitUnits(text string) []string {
	var units []string
	var buffer []string

	emit := func(u string) {
		u = strings.TrimSpace(u)
		if section.WordCount(u) >= a.cfg.MinUnit {
			units = append(units, u)
		}
	}
	flush := func() {
		if len(buffer) > 0 {
			emit(strings.Join(buffer, " "))
			buffer = buffer[:0]
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		words := section.WordCount(para)
		switch {
		case words < a.cfg.ShortUnit:
			buffer = append(buffer, para)
		case words > a.cfg.LongUnit:
			flush()
			emit(para)
		default:
			buffer = append(buffer, para)
			flush()
		}
	}
	flush()
	return units
}

// refine extracts the sentences that carry the most task key terms:
// sentence-split the unit, score each sentence by term count, keep
// the top TopSentences in score order, and bound the result. Units
// with too few sentences fall back to a verbatim prefix.
func (a *Analyzer) refine(text string, terms []string) string {
	sentences := splitSentences(text, a.cfg.MinSentenceLen)
	if len(sentences) < a.cfg.TopSentences {
		return truncate(text, a.cfg.FallbackLen)
	}

	type scored struct {
		text  string
		count int
	}
	all := make([]scored, len(sentences))
	for i, s := range sentences {
		lower := strings.ToLower(s)
		count := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				count++
			}
		}
		all[i] = scored{text: s, count: count}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].count > all[j].count })

	top := all[:a.cfg.TopSentences]
	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = s.text
	}
	return truncate(strings.Join(parts, " "), a.cfg.MaxRefinedLen)
}

// splitSentences splits on sentence-ending punctuation, keeping only
// sentences of at least minLen characters.
func splitSentences(text string, minLen int) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				s := strings.TrimSpace(current.String())
				if len(s) >= minLen {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); len(s) >= minLen {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
