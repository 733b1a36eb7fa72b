package extract

import (
	"sort"
	"strings"

	"github.com/derekparker/trie/v3"
)

// KnownEntities is a prefix dictionary of already-resolved entity names,
// built up across an indexing run and consulted before each LLM extraction
// call so the prompt can steer the model toward reusing a canonical name
// instead of minting a near-duplicate under a slightly different spelling.
type KnownEntities struct {
	t *trie.Trie
}

// NewKnownEntities returns an empty dictionary.
func NewKnownEntities() *KnownEntities {
	return &KnownEntities{t: trie.New()}
}

// Add records name (resolving to id) in the dictionary, keyed
// case-insensitively.
func (k *KnownEntities) Add(name, id string) {
	if name == "" {
		return
	}
	k.t.Add(strings.ToLower(name), id)
}

// Hints scans text's whitespace-delimited tokens and 2-word phrases for
// prefixes matching a known entity name, returning up to maxHints matching
// canonical names (as originally added, lowercased), deduplicated.
func (k *KnownEntities) Hints(text string, maxHints int) []string {
	words := strings.Fields(text)
	seen := make(map[string]bool)
	var hits []string

	tryPrefix := func(candidate string) {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" || seen[candidate] {
			return
		}
		if !k.t.HasKeysWithPrefix(candidate) {
			return
		}
		for _, name := range k.t.PrefixSearch(candidate) {
			if !seen[name] {
				seen[name] = true
				hits = append(hits, name)
			}
		}
	}

	for i, w := range words {
		tryPrefix(w)
		if i+1 < len(words) {
			tryPrefix(w + " " + words[i+1])
		}
	}

	sort.Strings(hits)
	if maxHints > 0 && len(hits) > maxHints {
		hits = hits[:maxHints]
	}
	return hits
}
