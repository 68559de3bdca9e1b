// Package outline recovers an ordered heading list from a document,
// degrading from the native table of contents through font-size
// clustering to heading-shaped text patterns.
package outline

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dgallion1/docrank/internal/docsource"
)

// ErrNoOutline is returned when no strategy recovers any headings.
var ErrNoOutline = errors.New("no outline recovered by any strategy")

// Heading is one recovered structural heading. Level is 1-3, Page is
// 1-indexed. Headings are ordered by appearance; pages never decrease
// across the sequence.
type Heading struct {
	Level int
	Text  string
	Page  int
}

// Config bounds the extraction heuristics. The keyword-free gates
// (word counts, sample sizes) keep false positives down on documents
// with noisy layout.
type Config struct {
	// SamplePages is how many leading pages feed the font-frequency
	// table.
	SamplePages int
	// MaxHeadingWords rejects spans and blocks longer than a plausible
	// heading.
	MaxHeadingWords int
	// MaxHeadingLen truncates cleaned heading text.
	MaxHeadingLen int
	// Patterns are the heading-shaped expressions for the final
	// fallback. A block matching any of them is emitted as a level-2
	// heading.
	Patterns []*regexp.Regexp
}

// DefaultConfig returns the extraction bounds used in production.
func DefaultConfig() Config {
	return Config{
		SamplePages:     10,
		MaxHeadingWords: 15,
		MaxHeadingLen:   120,
		Patterns:        DefaultPatterns(),
	}
}

// DefaultPatterns returns the heading-shaped expressions: an all-caps
// phrase of 5-50 characters, a leading enumeration followed by a
// capitalized word, and a short Title-Case phrase.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`^[A-Z][A-Z0-9 \-:,&]{4,49}$`),
		regexp.MustCompile(`^\d+(\.\d+)*\.?\s+[A-Z]\w+`),
		regexp.MustCompile(`^(?:[A-Z][a-z]+[ \t]?){1,6}$`),
	}
}

// Extractor recovers outlines with a fixed strategy priority.
type Extractor struct {
	cfg Config
	log *slog.Logger
}

func NewExtractor(cfg Config, log *slog.Logger) *Extractor {
	if cfg.SamplePages <= 0 {
		cfg.SamplePages = 10
	}
	if cfg.MaxHeadingWords <= 0 {
		cfg.MaxHeadingWords = 15
	}
	if cfg.MaxHeadingLen <= 0 {
		cfg.MaxHeadingLen = 120
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns()
	}
	return &Extractor{cfg: cfg, log: log}
}

// Extract applies the strategies in priority order and returns the
// first non-empty result. The native table of contents is
// authoritative when present; font clustering and pattern scanning
// are best-effort fallbacks.
func (e *Extractor) Extract(doc docsource.Document) ([]Heading, error) {
	strategies := []struct {
		name string
		fn   func(docsource.Document) []Heading
	}{
		{"toc", e.fromTOC},
		{"fonts", e.fromFontSizes},
		{"patterns", e.fromPatterns},
	}
	for _, s := range strategies {
		headings := s.fn(doc)
		if len(headings) > 0 {
			if e.log != nil {
				e.log.Debug("outline recovered",
					"document", doc.Filename(),
					"strategy", s.name,
					"headings", len(headings),
				)
			}
			return headings, nil
		}
	}
	return nil, ErrNoOutline
}

// cleanHeadingText collapses whitespace, strips leading enumeration
// tokens such as "1.2.3 ", and truncates to the configured bound.
func (e *Extractor) cleanHeadingText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = enumPrefix.ReplaceAllString(text, "")
	if len(text) > e.cfg.MaxHeadingLen {
		text = strings.TrimSpace(text[:e.cfg.MaxHeadingLen])
	}
	return text
}

var enumPrefix = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+`)

// dedupe removes headings repeating the same normalized text on the
// same page, preserving first-occurrence order.
func dedupe(headings []Heading) []Heading {
	type key struct {
		text string
		page int
	}
	seen := make(map[key]bool, len(headings))
	out := headings[:0]
	for _, h := range headings {
		k := key{text: strings.ToLower(h.Text), page: h.Page}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

// clampPages enforces the non-decreasing page invariant in place.
func clampPages(headings []Heading) []Heading {
	prev := 1
	for i := range headings {
		if headings[i].Page < prev {
			headings[i].Page = prev
		}
		prev = headings[i].Page
	}
	return headings
}
