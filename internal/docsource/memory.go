package docsource

import "fmt"

// memDocument is a fully materialized Document. The synthetic-page
// providers (text, markdown, html, docx) build one of these at open
// time; tests construct them directly through NewMemDocument.
type memDocument struct {
	filename string
	pages    []memPage
	toc      []TOCEntry
}

type memPage struct {
	text  string
	spans []Span
}

// NewMemDocument builds an in-memory Document from per-page text,
// optional per-page spans, and an optional table of contents.
// spans may be nil or shorter than pages.
func NewMemDocument(filename string, pages []string, spans [][]Span, toc []TOCEntry) Document {
	d := &memDocument{filename: filename, toc: toc}
	for i, text := range pages {
		p := memPage{text: text}
		if i < len(spans) {
			p.spans = spans[i]
		}
		d.pages = append(d.pages, p)
	}
	return d
}

func (d *memDocument) Filename() string { return d.filename }

func (d *memDocument) PageCount() int { return len(d.pages) }

func (d *memDocument) PageText(page int) (string, error) {
	if page < 1 || page > len(d.pages) {
		return "", fmt.Errorf("page %d out of range [1,%d]", page, len(d.pages))
	}
	return d.pages[page-1].text, nil
}

func (d *memDocument) PageSpans(page int) ([]Span, error) {
	if page < 1 || page > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range [1,%d]", page, len(d.pages))
	}
	return d.pages[page-1].spans, nil
}

func (d *memDocument) TableOfContents() []TOCEntry { return d.toc }

func (d *memDocument) Close() error { return nil }
