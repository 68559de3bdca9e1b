package scoring

import (
	"fmt"
	"strings"
	"unicode"
)

// DescriptiveQuery synthesizes the embedding query from persona and
// task. The phrasing steers the model toward the intent behind the
// task rather than its literal wording, which measurably improves
// section recall.
func DescriptiveQuery(persona, task string) string {
	return fmt.Sprintf(
		"Based on the needs of a %s, find the most relevant information "+
			"to accomplish the following task: '%s'. Focus on finding actionable "+
			"insights, key activities, relevant places, and recommendations that directly "+
			"help with this specific job.",
		persona, task,
	)
}

// TaskKeyTerms extracts the task's key terms: lower-cased alphabetic
// tokens longer than 3 characters with stop words removed,
// deduplicated in first-seen order.
func TaskKeyTerms(task string, tables Tables) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, tok := range strings.FieldsFunc(strings.ToLower(task), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len(tok) <= 3 || tables.StopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}
