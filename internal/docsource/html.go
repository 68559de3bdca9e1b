package docsource

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// openHTML parses an HTML file and synthesizes one page per h1-h3
// heading, mirroring the markdown provider. Headings become the table
// of contents; script, style and chrome elements are skipped.
func openHTML(filename string, data []byte) (Document, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
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
	appendText := func(t string) {
		if t == "" {
			return
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(t)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := htmlHeadingLevel(n.Data); level > 0 {
				title := htmlTextContent(n)
				if title != "" {
					flushPage()
					if level <= 3 {
						toc = append(toc, TOCEntry{Level: level, Title: title, Page: len(pages) + 1})
					}
					appendText(title)
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				appendText(htmlTextContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flushPage()

	if len(pages) == 0 {
		pages = append(pages, "")
	}
	return NewMemDocument(filename, pages, nil, toc), nil
}

func htmlHeadingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func htmlTextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
