package docsource

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// openMarkdown parses a markdown file with goldmark and synthesizes
// one page per heading: the heading and the content that follows it
// up to the next heading form a page. The heading AST doubles as an
// authoritative table of contents.
func openMarkdown(filename string, data []byte) (Document, error) {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

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

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushPage()
			title := string(node.Text(data))
			if node.Level <= 3 && title != "" {
				toc = append(toc, TOCEntry{
					Level: node.Level,
					Title: title,
					Page:  len(pages) + 1,
				})
			}
			current.WriteString(title)
			current.WriteString("\n\n")
		default:
			if t := mdText(n, data); t != "" {
				if current.Len() > 0 {
					current.WriteString("\n\n")
				}
				current.WriteString(t)
			}
		}
	}
	flushPage()

	if len(pages) == 0 {
		pages = append(pages, "")
	}
	return NewMemDocument(filename, pages, nil, toc), nil
}

// mdText gets the text content of a goldmark AST node.
func mdText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(mdText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
