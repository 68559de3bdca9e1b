package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docrank/internal/embeddings"
	"github.com/dgallion1/docrank/internal/section"
)

// BestChunkScorer implements ModeBestChunk: every section's paragraph
// chunks are encoded in a single batch, and the section scores as the
// best cosine similarity among its own chunks, retaining that chunk's
// text as the representative excerpt.
type BestChunkScorer struct {
	embedder      embeddings.Embedder
	minChunkWords int
	log           *slog.Logger
}

func NewBestChunkScorer(embedder embeddings.Embedder, minChunkWords int, log *slog.Logger) *BestChunkScorer {
	if minChunkWords <= 0 {
		minChunkWords = 50
	}
	return &BestChunkScorer{embedder: embedder, minChunkWords: minChunkWords, log: log}
}

type chunkRef struct {
	sectionIdx int
	text       string
}

// ScoreSections chunks every section, batch-encodes query and chunks,
// and keeps each section's best chunk. Sections producing no chunks
// above the word minimum score nothing and are omitted.
func (s *BestChunkScorer) ScoreSections(ctx context.Context, sections []section.Section, persona, task string) ([]Candidate, error) {
	if len(sections) == 0 {
		return nil, nil
	}

	var refs []chunkRef
	for i, sec := range sections {
		for _, chunk := range section.SplitParagraphs(sec.Text, s.minChunkWords) {
			refs = append(refs, chunkRef{sectionIdx: i, text: chunk})
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, DescriptiveQuery(persona, task))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	texts := make([]string, len(refs))
	for i, ref := range refs {
		texts[i] = ref.text
	}
	vecs, err := embeddings.BatchWithFallback(ctx, s.embedder, texts, s.log)
	if err != nil {
		return nil, fmt.Errorf("encoding chunks: %w", err)
	}

	// Best chunk per section, first chunk winning ties.
	best := make(map[int]Candidate, len(sections))
	for i, ref := range refs {
		if vecs[i] == nil {
			if s.log != nil {
				s.log.Warn("dropping chunk, encoding failed",
					"document", sections[ref.sectionIdx].Document)
			}
			continue
		}
		sim := embeddings.CosineSimilarity(queryVec, vecs[i])
		cur, ok := best[ref.sectionIdx]
		if ok && sim <= cur.Score {
			continue
		}
		sec := sections[ref.sectionIdx]
		best[ref.sectionIdx] = Candidate{
			Document:     sec.Document,
			PageNumber:   sec.StartPage,
			SectionTitle: sec.Title,
			Score:        sim,
			RefinedText:  ref.text,
		}
	}

	// Emit in section encounter order to keep downstream sorting
	// deterministic.
	var candidates []Candidate
	for i := range sections {
		if c, ok := best[i]; ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}
