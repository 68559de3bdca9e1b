// Package ranking orders scored candidates under a per-document
// diversity cap.
package ranking

import (
	"sort"

	"github.com/dgallion1/docrank/internal/scoring"
)

// RankedResult is a scored candidate with its final 1-indexed
// importance rank.
type RankedResult struct {
	scoring.Candidate
	ImportanceRank int
}

// Rank stable-sorts candidates by score descending (ties keep
// encounter order) and greedily admits them, capping each document at
// maxPerDocument entries and the output at maxTotal. Unconstrained
// top-K lets one keyword-dense document crowd out the rest; the cap
// guarantees cross-document coverage while preserving score order
// within it.
func Rank(candidates []scoring.Candidate, maxPerDocument, maxTotal int) []RankedResult {
	if maxPerDocument <= 0 {
		maxPerDocument = 3
	}
	if maxTotal <= 0 {
		maxTotal = 20
	}

	sorted := make([]scoring.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	perDoc := make(map[string]int)
	var results []RankedResult
	for _, c := range sorted {
		if len(results) >= maxTotal {
			break
		}
		if perDoc[c.Document] >= maxPerDocument {
			continue
		}
		perDoc[c.Document]++
		results = append(results, RankedResult{
			Candidate:      c,
			ImportanceRank: len(results) + 1,
		})
	}
	return results
}
