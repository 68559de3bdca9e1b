package outline

import (
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/docsource"
)

// fromTOC converts the document's native table of contents, filtered
// to levels 1-3, into headings in document order.
func (e *Extractor) fromTOC(doc docsource.Document) []Heading {
	toc := doc.TableOfContents()
	if len(toc) == 0 {
		return nil
	}
	var headings []Heading
	for _, entry := range toc {
		if entry.Level < 1 || entry.Level > 3 {
			continue
		}
		text := e.cleanHeadingText(entry.Title)
		if text == "" {
			continue
		}
		page := entry.Page
		if page < 1 {
			page = 1
		}
		headings = append(headings, Heading{Level: entry.Level, Text: text, Page: page})
	}
	return clampPages(headings)
}

// fromFontSizes builds a frequency table of font sizes used by short
// spans on a prefix of pages, takes the top three distinct sizes as an
// implicit heading hierarchy, and assigns every short span on every
// page the level of the largest clustered size it meets or exceeds.
func (e *Extractor) fromFontSizes(doc docsource.Document) []Heading {
	sample := e.cfg.SamplePages
	if sample > doc.PageCount() {
		sample = doc.PageCount()
	}

	freq := make(map[float64]int)
	for page := 1; page <= sample; page++ {
		spans, err := doc.PageSpans(page)
		if err != nil {
			continue
		}
		for _, span := range spans {
			if !e.headingShaped(span.Text) || span.FontSize <= 0 {
				continue
			}
			freq[roundSize(span.FontSize)]++
		}
	}
	if len(freq) == 0 {
		return nil
	}

	sizes := make([]float64, 0, len(freq))
	for size := range freq {
		sizes = append(sizes, size)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	if len(sizes) > 3 {
		sizes = sizes[:3]
	}

	var headings []Heading
	for page := 1; page <= doc.PageCount(); page++ {
		spans, err := doc.PageSpans(page)
		if err != nil {
			continue
		}
		for _, span := range spans {
			if !e.headingShaped(span.Text) {
				continue
			}
			level := levelFor(roundSize(span.FontSize), sizes)
			if level == 0 {
				continue
			}
			text := e.cleanHeadingText(span.Text)
			if text == "" {
				continue
			}
			headings = append(headings, Heading{Level: level, Text: text, Page: page})
		}
	}
	return clampPages(dedupe(headings))
}

// levelFor maps a size onto the clustered hierarchy: level 1 for the
// largest threshold met, down to level 3; 0 when under all thresholds.
func levelFor(size float64, sizes []float64) int {
	for i, threshold := range sizes {
		if size >= threshold {
			return i + 1
		}
	}
	return 0
}

func roundSize(size float64) float64 {
	return float64(int(size*10+0.5)) / 10
}

// fromPatterns scans every page's text blocks for heading-shaped
// lines and emits each as a level-2 heading.
func (e *Extractor) fromPatterns(doc docsource.Document) []Heading {
	var headings []Heading
	for page := 1; page <= doc.PageCount(); page++ {
		text, err := doc.PageText(page)
		if err != nil {
			continue
		}
		for _, block := range strings.Split(text, "\n") {
			block = strings.TrimSpace(block)
			if block == "" || !e.headingShaped(block) {
				continue
			}
			if !e.matchesPattern(block) {
				continue
			}
			cleaned := e.cleanHeadingText(block)
			if cleaned == "" {
				continue
			}
			headings = append(headings, Heading{Level: 2, Text: cleaned, Page: page})
		}
	}
	return clampPages(dedupe(headings))
}

func (e *Extractor) matchesPattern(block string) bool {
	for _, p := range e.cfg.Patterns {
		if p.MatchString(block) {
			return true
		}
	}
	return false
}

// headingShaped is the shared word-count gate on heading candidates.
func (e *Extractor) headingShaped(text string) bool {
	n := len(strings.Fields(text))
	return n > 0 && n < e.cfg.MaxHeadingWords
}
