package section

import (
	"strings"
	"testing"

	"github.com/dgallion1/docrank/internal/docsource"
	"github.com/dgallion1/docrank/internal/outline"
)

func body(words int) string {
	return strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", (words+4)/5))
}

func TestSegment_PageRanges(t *testing.T) {
	pages := []string{
		"Alpha " + body(30),
		"Bravo " + body(30),
		"Charlie " + body(30),
		"Delta " + body(30),
	}
	doc := docsource.NewMemDocument("doc.pdf", pages, nil, nil)
	headings := []outline.Heading{
		{Level: 1, Text: "First", Page: 1},
		{Level: 1, Text: "Second", Page: 3},
	}

	sections := Segment(doc, headings, DefaultConfig())
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	// First section covers pages [1,3): Alpha and Bravo but not Charlie.
	if !strings.Contains(sections[0].Text, "Alpha") || !strings.Contains(sections[0].Text, "Bravo") {
		t.Errorf("first section missing pages: %q", sections[0].Text[:60])
	}
	if strings.Contains(sections[0].Text, "Charlie") {
		t.Errorf("first section leaked past its end page")
	}

	// Last section runs to document end: Charlie and Delta.
	if !strings.Contains(sections[1].Text, "Charlie") || !strings.Contains(sections[1].Text, "Delta") {
		t.Errorf("last section should include the final page: %q", sections[1].Text[:60])
	}

	if sections[0].StartPage != 1 || sections[0].EndPage != 3 {
		t.Errorf("first section pages = [%d,%d)", sections[0].StartPage, sections[0].EndPage)
	}
	if sections[1].StartPage != 3 || sections[1].EndPage != 5 {
		t.Errorf("last section pages = [%d,%d)", sections[1].StartPage, sections[1].EndPage)
	}
}

func TestSegment_SamePageHeadingsStillRead(t *testing.T) {
	pages := []string{body(60)}
	doc := docsource.NewMemDocument("doc.pdf", pages, nil, nil)
	headings := []outline.Heading{
		{Level: 1, Text: "A", Page: 1},
		{Level: 2, Text: "B", Page: 1},
	}
	sections := Segment(doc, headings, DefaultConfig())
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	for i, s := range sections {
		if s.Text == "" {
			t.Errorf("section %d has empty text", i)
		}
	}
}

func TestSegment_ShortSectionsFiltered(t *testing.T) {
	doc := docsource.NewMemDocument("doc.pdf", []string{"only five words right here"}, nil, nil)
	headings := []outline.Heading{{Level: 1, Text: "Short", Page: 1}}
	sections := Segment(doc, headings, Config{MaxChars: 5000, MinWords: 20})
	if len(sections) != 0 {
		t.Errorf("expected short section to be filtered, got %d", len(sections))
	}
}

func TestSegment_TruncatesToMaxChars(t *testing.T) {
	doc := docsource.NewMemDocument("doc.pdf", []string{body(5000)}, nil, nil)
	headings := []outline.Heading{{Level: 1, Text: "Big", Page: 1}}
	sections := Segment(doc, headings, Config{MaxChars: 500, MinWords: 20})
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if len(sections[0].Text) > 500 {
		t.Errorf("section text length %d exceeds cap", len(sections[0].Text))
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace runs", "a   b\t\tc", "a b c"},
		{"blank line collapse", "a\n\n\n\nb", "a\n\nb"},
		{"control bytes", "a\x00b\x07c", "abc"},
		{"trim", "  \n a \n ", "a"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Normalize(c.in); got != c.want {
				t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestSplitParagraphs_MinWordsEnforced(t *testing.T) {
	text := "one two three\n\n" + body(40) + "\n\n" + "four five\n\n" + body(25)
	chunks := SplitParagraphs(text, 20)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	for i, c := range chunks {
		if WordCount(c) < 20 {
			t.Errorf("chunk %d has %d words, below minimum", i, WordCount(c))
		}
	}
}

func TestSplitParagraphs_Empty(t *testing.T) {
	if got := SplitParagraphs("", 10); len(got) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(got))
	}
	if got := SplitParagraphs("\n\n\n\n", 10); len(got) != 0 {
		t.Errorf("expected no chunks for blank text, got %d", len(got))
	}
}
