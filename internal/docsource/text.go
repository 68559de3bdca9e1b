package docsource

import (
	"bufio"
	"bytes"
	"strings"
)

// Paragraphs per synthetic page for plain text files.
const textParagraphsPerPage = 5

// openText splits a plain text file into paragraphs on blank lines
// and groups them into synthetic pages. Plain text carries no
// structural markers, so no table of contents is produced and the
// outline extractor falls through to its pattern heuristics.
func openText(filename string, data []byte) (Document, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var pages []string
	for i := 0; i < len(paragraphs); i += textParagraphsPerPage {
		end := i + textParagraphsPerPage
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		pages = append(pages, strings.Join(paragraphs[i:end], "\n\n"))
	}
	if len(pages) == 0 {
		pages = append(pages, "")
	}
	return NewMemDocument(filename, pages, nil, nil), nil
}
