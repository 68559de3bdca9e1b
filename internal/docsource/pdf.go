package docsource

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// pdfDocument wraps an open PDF. The reader holds the backing temp
// file open until Close.
type pdfDocument struct {
	filename string
	path     string
	file     *os.File
	reader   *pdflib.Reader
	toc      []TOCEntry
}

// openPDF writes the bytes to a temp file (the library needs a
// ReadSeeker plus size) and resolves the native outline up front.
func openPDF(filename string, data []byte) (Document, error) {
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	d := &pdfDocument{
		filename: filename,
		path:     tmpPath,
		file:     f,
		reader:   reader,
	}
	d.toc = d.resolveOutline()
	return d, nil
}

func (d *pdfDocument) Filename() string { return d.filename }

func (d *pdfDocument) PageCount() int { return d.reader.NumPage() }

func (d *pdfDocument) PageText(page int) (string, error) {
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range [1,%d]", page, d.reader.NumPage())
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d text: %w", page, err)
	}
	return text, nil
}

// PageSpans groups the page's styled text fragments into line-level
// spans. Fragments sharing a Y coordinate (within half a point) are
// joined; the span carries the largest font size seen on the line.
func (d *pdfDocument) PageSpans(page int) ([]Span, error) {
	if page < 1 || page > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1,%d]", page, d.reader.NumPage())
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	content := p.Content()
	texts := make([]pdflib.Text, len(content.Text))
	copy(texts, content.Text)
	// Top-to-bottom, then left-to-right. PDF Y grows upward.
	sort.SliceStable(texts, func(i, j int) bool {
		if math.Abs(texts[i].Y-texts[j].Y) > 0.5 {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var spans []Span
	var line strings.Builder
	var lineY, lineSize float64
	flush := func() {
		t := strings.TrimSpace(line.String())
		if t != "" {
			spans = append(spans, Span{Text: t, FontSize: lineSize})
		}
		line.Reset()
		lineSize = 0
	}
	for i, t := range texts {
		if i > 0 && math.Abs(t.Y-lineY) > 0.5 {
			flush()
		}
		lineY = t.Y
		line.WriteString(t.S)
		if t.FontSize > lineSize {
			lineSize = t.FontSize
		}
	}
	flush()
	return spans, nil
}

func (d *pdfDocument) TableOfContents() []TOCEntry { return d.toc }

func (d *pdfDocument) Close() error {
	err := d.file.Close()
	os.Remove(d.path)
	return err
}

// resolveOutline flattens the native outline tree. The library's
// outline entries carry no page numbers, so each title is located by
// scanning page text forward from the previous entry's page; entries
// that cannot be located are dropped. An empty result lets the caller
// fall back to layout heuristics.
func (d *pdfDocument) resolveOutline() []TOCEntry {
	root := d.reader.Outline()
	var flat []TOCEntry
	var walk func(items []pdflib.Outline, level int)
	walk = func(items []pdflib.Outline, level int) {
		for _, it := range items {
			title := strings.TrimSpace(it.Title)
			if title != "" {
				flat = append(flat, TOCEntry{Level: level, Title: title})
			}
			walk(it.Child, level+1)
		}
	}
	walk(root.Child, 1)
	if len(flat) == 0 {
		return nil
	}

	var resolved []TOCEntry
	searchFrom := 1
	for _, entry := range flat {
		page := d.findTitlePage(entry.Title, searchFrom)
		if page == 0 {
			continue
		}
		entry.Page = page
		resolved = append(resolved, entry)
		searchFrom = page
	}
	return resolved
}

// findTitlePage returns the first page at or after start whose text
// contains the title, or 0.
func (d *pdfDocument) findTitlePage(title string, start int) int {
	needle := normalizeForSearch(title)
	if needle == "" {
		return 0
	}
	for page := start; page <= d.reader.NumPage(); page++ {
		text, err := d.PageText(page)
		if err != nil {
			continue
		}
		if strings.Contains(normalizeForSearch(text), needle) {
			return page
		}
	}
	return 0
}

func normalizeForSearch(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
