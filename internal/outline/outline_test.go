package outline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docrank/internal/docsource"
)

func newExtractor() *Extractor {
	return NewExtractor(DefaultConfig(), nil)
}

func TestExtract_NativeTOCIsAuthoritative(t *testing.T) {
	doc := docsource.NewMemDocument("doc.pdf",
		[]string{"page one text", "page two text", "page three text"},
		[][]docsource.Span{
			{{Text: "SOME HUGE BANNER", FontSize: 30}},
		},
		[]docsource.TOCEntry{
			{Level: 1, Title: "A", Page: 1},
			{Level: 2, Title: "B", Page: 3},
		},
	)

	headings, err := newExtractor().Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Heading{
		{Level: 1, Text: "A", Page: 1},
		{Level: 2, Text: "B", Page: 3},
	}
	if !reflect.DeepEqual(headings, want) {
		t.Errorf("got %+v, want %+v", headings, want)
	}
}

func TestExtract_TOCFiltersDeepLevelsAndCleansText(t *testing.T) {
	doc := docsource.NewMemDocument("doc.pdf",
		[]string{"text"},
		nil,
		[]docsource.TOCEntry{
			{Level: 1, Title: "  1.2.3   Weird    Spacing  ", Page: 1},
			{Level: 4, Title: "Too Deep", Page: 1},
		},
	)

	headings, err := newExtractor().Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(headings) != 1 {
		t.Fatalf("expected 1 heading, got %d", len(headings))
	}
	if headings[0].Text != "Weird Spacing" {
		t.Errorf("expected cleaned text %q, got %q", "Weird Spacing", headings[0].Text)
	}
}

func TestExtract_FontSizeClusteringFallback(t *testing.T) {
	spans := [][]docsource.Span{
		{
			{Text: "Chapter One", FontSize: 24},
			{Text: "Section Alpha", FontSize: 18},
			{Text: "Detail Heading", FontSize: 14},
			{Text: "body text at the regular size which runs on and on well past the fifteen word heading gate so it never counts", FontSize: 10},
		},
		{
			{Text: "Chapter Two", FontSize: 24},
			{Text: "tiny footnote", FontSize: 8},
		},
	}
	doc := docsource.NewMemDocument("doc.pdf",
		[]string{"page one", "page two"}, spans, nil)

	headings, err := newExtractor().Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Heading{
		{Level: 1, Text: "Chapter One", Page: 1},
		{Level: 2, Text: "Section Alpha", Page: 1},
		{Level: 3, Text: "Detail Heading", Page: 1},
		{Level: 1, Text: "Chapter Two", Page: 2},
	}
	if !reflect.DeepEqual(headings, want) {
		t.Errorf("got %+v, want %+v", headings, want)
	}
}

func TestExtract_FontFallbackDeduplicates(t *testing.T) {
	spans := [][]docsource.Span{
		{
			{Text: "Running Header", FontSize: 20},
			{Text: "Running Header", FontSize: 20},
			{Text: "Body Size", FontSize: 12},
			{Text: "Smallest", FontSize: 10},
		},
	}
	doc := docsource.NewMemDocument("doc.pdf", []string{"page"}, spans, nil)

	headings, err := newExtractor().Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, h := range headings {
		if h.Text == "Running Header" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 occurrence of duplicate heading, got %d", count)
	}
}

func TestExtract_PatternFallback(t *testing.T) {
	pages := []string{
		"EXECUTIVE SUMMARY\nThis paragraph is ordinary body text that is definitely much too long to ever be mistaken for a heading by the word gate.\n",
		"2. Capitalized Start\nmore plain body text follows here in lowercase so it cannot match the title case pattern at all\n",
	}
	doc := docsource.NewMemDocument("doc.txt", pages, nil, nil)

	headings, err := newExtractor().Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(headings) < 2 {
		t.Fatalf("expected at least 2 headings, got %+v", headings)
	}
	for _, h := range headings {
		if h.Level != 2 {
			t.Errorf("pattern headings must be level 2, got %+v", h)
		}
	}
	if headings[0].Text != "EXECUTIVE SUMMARY" {
		t.Errorf("expected first heading EXECUTIVE SUMMARY, got %q", headings[0].Text)
	}
}

func TestExtract_NoOutline(t *testing.T) {
	doc := docsource.NewMemDocument("doc.txt",
		[]string{"entirely lowercase body text with no structure to speak of and nothing matching any of the heading shaped expressions"},
		nil, nil)

	_, err := newExtractor().Extract(doc)
	if !errors.Is(err, ErrNoOutline) {
		t.Fatalf("expected ErrNoOutline, got %v", err)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	pages := []string{"INTRODUCTION\nbody", "METHODS AND MATERIALS\nbody"}
	doc := docsource.NewMemDocument("doc.txt", pages, nil, nil)

	e := newExtractor()
	first, err := e.Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Extract(doc)
		if err != nil {
			t.Fatalf("unexpected error on run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestExtract_PagesNonDecreasing(t *testing.T) {
	doc := docsource.NewMemDocument("doc.pdf",
		[]string{"a", "b", "c"},
		nil,
		[]docsource.TOCEntry{
			{Level: 1, Title: "First", Page: 2},
			{Level: 2, Title: "Out Of Order", Page: 1},
			{Level: 1, Title: "Last", Page: 3},
		},
	)
	headings, err := newExtractor().Extract(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prev := 0
	for _, h := range headings {
		if h.Page < prev {
			t.Fatalf("pages decreased: %+v", headings)
		}
		prev = h.Page
	}
}

func TestCleanHeadingText_Truncation(t *testing.T) {
	e := NewExtractor(Config{MaxHeadingLen: 20}, nil)
	long := strings.Repeat("abcd ", 20)
	got := e.cleanHeadingText(long)
	if len(got) > 20 {
		t.Errorf("expected at most 20 chars, got %d: %q", len(got), got)
	}
}
