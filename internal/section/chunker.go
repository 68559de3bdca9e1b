package section

import "strings"

// SplitParagraphs splits text on blank-line paragraph boundaries and
// retains only paragraphs with at least minWords words. Short
// fragments are noise at this granularity and are dropped, not
// merged.
func SplitParagraphs(text string, minWords int) []string {
	var chunks []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if WordCount(para) < minWords {
			continue
		}
		chunks = append(chunks, para)
	}
	return chunks
}
