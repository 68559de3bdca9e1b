package scoring

// Tables holds the keyword data the heuristic sub-scores match
// against. They are plain configuration so deployments can replace
// them without touching scoring logic.
type Tables struct {
	// PersonaKeywords maps persona archetype names to the vocabulary
	// that signals relevance for that archetype.
	PersonaKeywords map[string][]string
	// StopWords are excluded from task key-term extraction.
	StopWords map[string]bool
	// StructuralKeywords mark high-value section titles.
	StructuralKeywords []string
}

// DefaultTables returns the production keyword tables.
func DefaultTables() Tables {
	return Tables{
		PersonaKeywords: map[string][]string{
			"researcher": {"methodology", "results", "analysis", "data", "hypothesis", "literature", "findings"},
			"student":    {"definition", "example", "concept", "summary", "explanation", "basics", "introduction"},
			"analyst":    {"trend", "metric", "comparison", "growth", "performance", "forecast", "revenue"},
			"manager":    {"strategy", "overview", "budget", "risk", "decision", "roadmap", "milestone"},
			"developer":  {"implementation", "api", "code", "architecture", "configuration", "integration", "deployment"},
		},
		StopWords: map[string]bool{
			"the": true, "and": true, "for": true, "with": true, "that": true,
			"this": true, "from": true, "are": true, "was": true, "were": true,
			"have": true, "has": true, "been": true, "will": true, "would": true,
			"should": true, "could": true, "into": true, "about": true,
			"their": true, "them": true, "they": true, "what": true,
			"when": true, "where": true, "which": true, "your": true,
		},
		StructuralKeywords: []string{
			"introduction", "overview", "summary", "conclusion", "methodology", "results",
		},
	}
}
