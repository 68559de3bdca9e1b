package pipeline

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/config"
)

// keywordEmbedder is a deterministic two-dimensional embedder for
// tests. Texts mentioning methodology align with the query, texts
// about background are halfway, everything else is orthogonal.
type keywordEmbedder struct{}

func (keywordEmbedder) vec(text string) []float32 {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "methodology"):
		return []float32{1, 0}
	case strings.Contains(t, "background"):
		return []float32{0.5, 0.866}
	default:
		return []float32{0, 1}
	}
}

func (e keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vec(text), nil
}

func (e keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vec(t)
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		ScoringMode:         "chunk",
		WeightSemantic:      0.40,
		WeightPersona:       0.25,
		WeightTask:          0.25,
		WeightStructural:    0.10,
		MaxPerDocument:      3,
		MaxTotal:            20,
		SectionMaxChars:     5000,
		MinSectionWords:     3,
		MinChunkWords:       3,
		SimilarityThreshold: 0.01,
		TopSections:         5,
		TopSubsections:      10,
		WorkerCount:         1,
		MaxQueueSize:        4,
		MaxConcurrentDocs:   2,
		JobTTL:              time.Hour,
	}
}

const docAMarkdown = `# Introduction

This report gives general background on the project, covering the goals of the study, the team that ran it, and the overall context in which the work took place over the past year.

# Methodology

The methodology for gathering responses relied on structured surveys sent to every participant, and the same methodology governed how the responses were cleaned, coded, and checked before any conclusions were drawn from them.
`

const docBMarkdown = `# Catering Options

Lunch was provided by a rotating set of local vendors offering sandwiches, soups, salads, and coffee, with the menu changing every week based on feedback collected at the door.
`

func testDocs() []InputDocument {
	return []InputDocument{
		{Filename: "doc_a.md", Data: []byte(docAMarkdown)},
		{Filename: "doc_b.md", Data: []byte(docBMarkdown)},
	}
}

func TestEngineRun_RanksRelevantSectionFirst(t *testing.T) {
	engine := NewEngine(testConfig(), keywordEmbedder{}, testLogger())

	result, err := engine.Run(context.Background(), "PhD Researcher",
		"Review the methodology used for the survey", testDocs(), Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ExtractedSections) == 0 {
		t.Fatal("expected ranked sections, got none")
	}
	top := result.ExtractedSections[0]
	if top.Document != "doc_a.md" || top.SectionTitle != "Methodology" {
		t.Fatalf("top section = %+v, want Methodology from doc_a.md", top)
	}
	if top.ImportanceRank != 1 {
		t.Errorf("top section rank = %d, want 1", top.ImportanceRank)
	}
	if top.PageNumber != 2 {
		t.Errorf("top section page = %d, want 2", top.PageNumber)
	}
	for i, s := range result.ExtractedSections {
		if s.ImportanceRank != i+1 {
			t.Errorf("section %d has rank %d, want %d", i, s.ImportanceRank, i+1)
		}
	}

	if len(result.SubsectionAnalysis) == 0 {
		t.Fatal("expected subsection analysis, got none")
	}
	first := result.SubsectionAnalysis[0]
	if first.Document != "doc_a.md" {
		t.Errorf("first subsection document = %q, want doc_a.md", first.Document)
	}
	if !strings.Contains(strings.ToLower(first.RefinedText), "methodology") {
		t.Errorf("first subsection should come from the methodology text, got %q", first.RefinedText)
	}

	meta := result.Metadata
	if !reflect.DeepEqual(meta.InputDocuments, []string{"doc_a.md", "doc_b.md"}) {
		t.Errorf("metadata documents = %v", meta.InputDocuments)
	}
	if meta.Persona != "PhD Researcher" {
		t.Errorf("metadata persona = %q", meta.Persona)
	}
	if meta.ProcessingTimestamp == "" {
		t.Error("metadata timestamp is empty")
	}
}

func TestEngineRun_CompositeMode(t *testing.T) {
	cfg := testConfig()
	cfg.ScoringMode = "composite"
	engine := NewEngine(cfg, keywordEmbedder{}, testLogger())

	result, err := engine.Run(context.Background(), "PhD Researcher",
		"Review the methodology used for the survey", testDocs(), Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ExtractedSections) == 0 {
		t.Fatal("expected ranked sections, got none")
	}
	if got := result.ExtractedSections[0].SectionTitle; got != "Methodology" {
		t.Errorf("composite top section = %q, want Methodology", got)
	}
}

func TestEngineRun_Deterministic(t *testing.T) {
	engine := NewEngine(testConfig(), keywordEmbedder{}, testLogger())

	run := func() *Result {
		r, err := engine.Run(context.Background(), "PhD Researcher",
			"Review the methodology used for the survey", testDocs(), Hooks{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return r
	}

	first := run()
	for i := 0; i < 3; i++ {
		again := run()
		if !reflect.DeepEqual(first.ExtractedSections, again.ExtractedSections) {
			t.Fatalf("run %d extracted sections differ:\n%+v\n%+v",
				i, first.ExtractedSections, again.ExtractedSections)
		}
		if !reflect.DeepEqual(first.SubsectionAnalysis, again.SubsectionAnalysis) {
			t.Fatalf("run %d subsection analysis differs", i)
		}
	}
}

func TestEngineRun_ValidationErrors(t *testing.T) {
	engine := NewEngine(testConfig(), keywordEmbedder{}, testLogger())
	docs := testDocs()

	tests := []struct {
		name    string
		persona string
		task    string
		docs    []InputDocument
	}{
		{"empty persona", "", "do something", docs},
		{"empty task", "Researcher", "   ", docs},
		{"no documents", "Researcher", "do something", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.Run(context.Background(), tt.persona, tt.task, tt.docs, Hooks{}); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestEngineRun_SkipsUnreadableDocuments(t *testing.T) {
	engine := NewEngine(testConfig(), keywordEmbedder{}, testLogger())

	docs := []InputDocument{
		{Filename: "doc_a.md", Data: []byte(docAMarkdown)},
		{Filename: "broken.xyz", Data: []byte("unsupported format")},
	}
	var skipped []string
	hooks := Hooks{DocSkipped: func(name string, err error) {
		if err == nil {
			t.Error("skip hook called with nil error")
		}
		skipped = append(skipped, name)
	}}

	result, err := engine.Run(context.Background(), "PhD Researcher",
		"Review the methodology used for the survey", docs, hooks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != "broken.xyz" {
		t.Errorf("skipped = %v, want [broken.xyz]", skipped)
	}
	if len(result.ExtractedSections) == 0 {
		t.Error("surviving document should still produce sections")
	}
	for _, s := range result.ExtractedSections {
		if s.Document != "doc_a.md" {
			t.Errorf("ranked section from skipped document: %+v", s)
		}
	}
}

func TestEngineRun_NoSectionsYieldsEmptyResult(t *testing.T) {
	engine := NewEngine(testConfig(), keywordEmbedder{}, testLogger())

	docs := []InputDocument{{Filename: "notes.txt", Data: []byte("hello world")}}
	result, err := engine.Run(context.Background(), "Researcher", "find anything", docs, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ExtractedSections) != 0 {
		t.Errorf("expected no sections, got %d", len(result.ExtractedSections))
	}
	if len(result.SubsectionAnalysis) != 0 {
		t.Errorf("expected no subsections, got %d", len(result.SubsectionAnalysis))
	}
	if result.ExtractedSections == nil || result.SubsectionAnalysis == nil {
		t.Error("empty result slices should be non-nil for JSON encoding")
	}
}
