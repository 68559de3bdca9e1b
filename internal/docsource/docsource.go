// Package docsource provides page-oriented access to the supported
// document formats. Each provider exposes per-page text, per-span font
// metadata where the format carries it, and a native table of contents
// where one exists.
package docsource

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is the page-level view of a parsed document. Pages are
// 1-indexed. Formats without physical pages synthesize them from
// structure (headings or paragraph groups).
type Document interface {
	Filename() string
	PageCount() int
	PageText(page int) (string, error)
	// PageSpans returns layout spans for a page. Formats without font
	// metadata return an empty slice.
	PageSpans(page int) ([]Span, error)
	// TableOfContents returns the native outline, or nil if the
	// document carries none.
	TableOfContents() []TOCEntry
	Close() error
}

// Span is a run of text with its layout attributes.
type Span struct {
	Text     string
	FontSize float64
	Bold     bool
}

// TOCEntry is one native outline entry.
type TOCEntry struct {
	Level int
	Title string
	Page  int
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// Open parses raw document bytes into a Document for the filename's format.
func Open(filename string, data []byte) (Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return openText(filename, data)
	case ".md", ".markdown":
		return openMarkdown(filename, data)
	case ".html", ".htm":
		return openHTML(filename, data)
	case ".pdf":
		return openPDF(filename, data)
	case ".docx":
		return openDOCX(filename, data)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
