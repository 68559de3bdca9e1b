package docsource

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// openDOCX parses a .docx file. Heading-styled paragraphs start new
// synthetic pages and feed the table of contents; body paragraphs
// accumulate onto the current page.
func openDOCX(filename string, data []byte) (Document, error) {
	// go-docx needs a ReadSeeker plus size, so write to a temp file.
	tmp, err := os.CreateTemp("", "docrank-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(len(data)))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var pages []string
	var toc []TOCEntry
	var current strings.Builder

	flushPage := func() {
		t := strings.TrimSpace(current.String())
		if t != "" {
			pages = append(pages, t)
		}
		current.Reset()
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		level := docxHeadingLevel(para)
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		if level > 0 {
			flushPage()
			if level <= 3 {
				toc = append(toc, TOCEntry{Level: level, Title: text, Page: len(pages) + 1})
			}
			current.WriteString(text)
			current.WriteString("\n\n")
		} else {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(text)
		}
	}
	flushPage()

	if len(pages) == 0 {
		pages = append(pages, "")
	}
	return NewMemDocument(filename, pages, nil, toc), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
