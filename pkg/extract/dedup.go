package extract

import (
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

var enStopwords = stopwords.MustGet("en")

// MergeNearDuplicates merges extracted entities whose names are near
// duplicates of an earlier one in the list: exact match (case-insensitive),
// substring containment, or Jaccard similarity over whitespace-tokenized
// lowercase forms >= 0.8. The first occurrence's name is kept as canonical;
// later duplicates are dropped, and their confidence is folded in by taking
// the max of the two.
func MergeNearDuplicates(entities []ExtractedEntity) []ExtractedEntity {
	if len(entities) <= 1 {
		return entities
	}

	kept := make([]ExtractedEntity, 0, len(entities))
	names := make([]string, 0, len(entities))

	for _, e := range entities {
		lc := strings.ToLower(strings.TrimSpace(e.Name))
		if lc == "" {
			continue
		}
		dupIdx := findDuplicate(lc, names)
		if dupIdx < 0 {
			kept = append(kept, e)
			names = append(names, lc)
			continue
		}
		if e.Confidence > kept[dupIdx].Confidence {
			kept[dupIdx].Confidence = e.Confidence
		}
	}
	return kept
}

// findDuplicate returns the index in names that candidate duplicates, or -1.
// A fresh Aho-Corasick automaton over names handles the substring-containment
// check in one scan rather than len(names) individual strings.Contains calls.
func findDuplicate(candidate string, names []string) int {
	if len(names) == 0 {
		return -1
	}
	for i, n := range names {
		if n == candidate {
			return i
		}
	}

	// One AC scan checks "an existing name is a substring of candidate" for
	// every name at once, instead of len(names) strings.Contains calls.
	if ac, err := ahocorasick.NewBuilder().AddStrings(names).SetMatchKind(ahocorasick.LeftmostLongest).Build(); err == nil {
		if matches := ac.FindAllOverlapping([]byte(candidate)); len(matches) > 0 {
			return int(matches[0].PatternID)
		}
	}
	// Reverse direction: candidate is a substring of an existing name.
	for i, n := range names {
		if strings.Contains(n, candidate) {
			return i
		}
	}

	candTokens := tokenizeFiltered(candidate)
	for i, n := range names {
		if jaccard(candTokens, tokenizeFiltered(n)) >= 0.8 {
			return i
		}
	}
	return -1
}

// tokenizeFiltered splits on whitespace, lowercases, and drops stopwords so
// that e.g. "John of Acme" and "John Acme" still compare favorably.
func tokenizeFiltered(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		tok = strings.ToLower(tok)
		if enStopwords.Contains(tok) {
			continue
		}
		out[tok] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
