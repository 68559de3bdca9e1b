package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/docsource"
	"github.com/dgallion1/docrank/internal/embeddings"
	"github.com/dgallion1/docrank/internal/outline"
	"github.com/dgallion1/docrank/internal/ranking"
	"github.com/dgallion1/docrank/internal/scoring"
	"github.com/dgallion1/docrank/internal/section"
	"github.com/dgallion1/docrank/internal/subsection"
)

// InputDocument is one raw document in an analysis request.
type InputDocument struct {
	Filename string
	Data     []byte
}

// Result is the full analysis output.
type Result struct {
	Metadata           Metadata            `json:"metadata"`
	ExtractedSections  []ExtractedSection  `json:"extracted_sections"`
	SubsectionAnalysis []RefinedSubsection `json:"subsection_analysis"`
}

type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

type RefinedSubsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Hooks lets callers observe a run. Either field may be nil.
type Hooks struct {
	Phase      func(phase string)
	DocSkipped func(filename string, err error)
}

// Engine runs the full ranking pipeline: outline recovery,
// segmentation, scoring, diversity-constrained ranking and
// sub-section refinement.
type Engine struct {
	cfg       config.Config
	extractor *outline.Extractor
	scorer    scoring.Scorer
	analyzer  *subsection.Analyzer
	log       *slog.Logger
}

// NewEngine wires the pipeline stages from configuration. The
// embedder is shared by the scorer and the analyzer.
func NewEngine(cfg config.Config, embedder embeddings.Embedder, log *slog.Logger) *Engine {
	tables := scoring.DefaultTables()

	var scorer scoring.Scorer
	switch scoring.Mode(cfg.ScoringMode) {
	case scoring.ModeComposite:
		weights := scoring.Weights{
			Semantic:   cfg.WeightSemantic,
			Persona:    cfg.WeightPersona,
			Task:       cfg.WeightTask,
			Structural: cfg.WeightStructural,
		}
		scorer = scoring.NewCompositeScorer(embedder, weights, tables, log)
	default:
		scorer = scoring.NewBestChunkScorer(embedder, cfg.MinChunkWords, log)
	}

	subCfg := subsection.DefaultConfig()
	subCfg.TopSections = cfg.TopSections
	subCfg.TopSubsections = cfg.TopSubsections
	subCfg.SimilarityThreshold = cfg.SimilarityThreshold

	return &Engine{
		cfg:       cfg,
		extractor: outline.NewExtractor(outline.DefaultConfig(), log),
		scorer:    scorer,
		analyzer:  subsection.NewAnalyzer(embedder, subCfg, tables, log),
		log:       log,
	}
}

// docSlot holds one document's parse output; slots are merged in
// submission order so scoring input is deterministic.
type docSlot struct {
	doc      docsource.Document
	sections []section.Section
}

// Run executes the pipeline for one request. Per-document failures
// are skipped; a fully empty result is returned for degenerate inputs
// rather than an error. Missing persona, task or documents is fatal.
func (e *Engine) Run(ctx context.Context, persona, task string, docs []InputDocument, hooks Hooks) (*Result, error) {
	phase := func(p string) {
		if hooks.Phase != nil {
			hooks.Phase(p)
		}
	}
	skipped := func(name string, err error) {
		e.log.Warn("skipping document", "document", name, "error", err)
		if hooks.DocSkipped != nil {
			hooks.DocSkipped(name, err)
		}
	}

	phase("validating")
	if err := scoring.Validate(persona, task, len(docs)); err != nil {
		return nil, err
	}

	// Parse, outline and segment each document concurrently.
	phase("parsing")
	slots := make([]*docSlot, len(docs))
	sem := make(chan struct{}, e.cfg.MaxConcurrentDocs)
	var wg sync.WaitGroup
	for i, in := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in InputDocument) {
			defer wg.Done()
			defer func() { <-sem }()

			docCtx := ctx
			if e.cfg.DocTimeout > 0 {
				var cancel context.CancelFunc
				docCtx, cancel = context.WithTimeout(ctx, e.cfg.DocTimeout)
				defer cancel()
			}

			slot, err := e.processDocument(docCtx, in)
			if err != nil {
				skipped(in.Filename, err)
				return
			}
			slots[i] = slot
		}(i, in)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		closeSlots(slots)
		return nil, err
	}

	// Merge in submission order.
	var sections []section.Section
	openDocs := make(map[string]docsource.Document)
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		sections = append(sections, slot.sections...)
		openDocs[slot.doc.Filename()] = slot.doc
	}
	defer closeSlots(slots)

	names := make([]string, len(docs))
	for i, in := range docs {
		names[i] = in.Filename
	}
	result := &Result{
		Metadata: Metadata{
			InputDocuments:      names,
			Persona:             persona,
			JobToBeDone:         task,
			ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
		ExtractedSections:  []ExtractedSection{},
		SubsectionAnalysis: []RefinedSubsection{},
	}
	if len(sections) == 0 {
		e.log.Warn("no sections recovered from any document")
		return result, nil
	}

	phase("scoring")
	candidates, err := e.scorer.ScoreSections(ctx, sections, persona, task)
	if err != nil {
		return nil, fmt.Errorf("scoring sections: %w", err)
	}

	phase("ranking")
	ranked := ranking.Rank(candidates, e.cfg.MaxPerDocument, e.cfg.MaxTotal)
	for _, r := range ranked {
		result.ExtractedSections = append(result.ExtractedSections, ExtractedSection{
			Document:       r.Document,
			SectionTitle:   r.SectionTitle,
			ImportanceRank: r.ImportanceRank,
			PageNumber:     r.PageNumber,
		})
	}

	phase("refining")
	subs, err := e.analyzer.Analyze(ctx, openDocs, ranked, persona, task)
	if err != nil {
		return nil, fmt.Errorf("analyzing subsections: %w", err)
	}
	for _, s := range subs {
		result.SubsectionAnalysis = append(result.SubsectionAnalysis, RefinedSubsection{
			Document:    s.Document,
			RefinedText: s.Text,
			PageNumber:  s.PageNumber,
		})
	}

	return result, nil
}

// processDocument parses one document and returns its sections. The
// document stays open for the sub-section window re-extraction.
func (e *Engine) processDocument(ctx context.Context, in InputDocument) (*docSlot, error) {
	doc, err := docsource.Open(in.Filename, in.Data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := ctx.Err(); err != nil {
		doc.Close()
		return nil, err
	}

	headings, err := e.extractor.Extract(doc)
	if err != nil {
		doc.Close()
		return nil, fmt.Errorf("outline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		doc.Close()
		return nil, err
	}

	secCfg := section.Config{MaxChars: e.cfg.SectionMaxChars, MinWords: e.cfg.MinSectionWords}
	sections := section.Segment(doc, headings, secCfg)
	return &docSlot{doc: doc, sections: sections}, nil
}

func closeSlots(slots []*docSlot) {
	for _, slot := range slots {
		if slot != nil && slot.doc != nil {
			slot.doc.Close()
		}
	}
}
