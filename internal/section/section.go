// Package section turns a recovered outline into bounded, cleaned
// text spans and splits them into paragraph chunks.
package section

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docrank/internal/docsource"
	"github.com/dgallion1/docrank/internal/outline"
)

// Section is the contiguous text span between one heading and the
// next. EndPage is an exclusive upper bound. Immutable once built.
type Section struct {
	Document  string
	Title     string
	StartPage int
	EndPage   int
	Text      string
}

// Config bounds segmentation cost and filters degenerate sections.
type Config struct {
	// MaxChars truncates section text.
	MaxChars int
	// MinWords filters out sections too short to carry signal.
	MinWords int
}

// DefaultConfig returns the production segmentation bounds.
func DefaultConfig() Config {
	return Config{MaxChars: 5000, MinWords: 20}
}

// Segment builds one Section per heading. Heading i spans pages
// [heading[i].Page, heading[i+1].Page); the final heading runs to the
// end of the document. A heading whose successor starts on the same
// page still reads its own start page.
func Segment(doc docsource.Document, headings []outline.Heading, cfg Config) []Section {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 5000
	}
	if cfg.MinWords < 0 {
		cfg.MinWords = 0
	}

	var sections []Section
	for i, h := range headings {
		start := h.Page
		if start < 1 {
			start = 1
		}
		end := doc.PageCount() + 1
		if i+1 < len(headings) {
			end = headings[i+1].Page
		}
		if end <= start {
			end = start + 1
		}
		if end > doc.PageCount()+1 {
			end = doc.PageCount() + 1
		}

		var buf strings.Builder
		for page := start; page < end; page++ {
			text, err := doc.PageText(page)
			if err != nil {
				continue
			}
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(text)
			if buf.Len() >= cfg.MaxChars {
				break
			}
		}

		text := Normalize(buf.String())
		if len(text) > cfg.MaxChars {
			text = text[:cfg.MaxChars]
		}
		if WordCount(text) < cfg.MinWords {
			continue
		}

		sections = append(sections, Section{
			Document:  doc.Filename(),
			Title:     h.Text,
			StartPage: start,
			EndPage:   end,
			Text:      text,
		})
	}
	return sections
}

// Normalize collapses blank-line runs and whitespace runs and strips
// non-printable bytes, preserving paragraph boundaries.
func Normalize(text string) string {
	var clean strings.Builder
	clean.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			clean.WriteRune(r)
		case unicode.IsControl(r):
			// drop
		default:
			clean.WriteRune(r)
		}
	}

	lines := strings.Split(clean.String(), "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
