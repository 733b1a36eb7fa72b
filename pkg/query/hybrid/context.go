package hybrid

import (
	"fmt"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// buildContext assembles the human-readable context string fed to the
// optional answer-generation prompt and returned to the caller, per spec
// §4.7 step 7's "Relevant Entities" / "Community Context" sections.
func buildContext(entities []*graphtypes.Entity, communities []*graphtypes.Community) string {
	var b strings.Builder
	if len(entities) > 0 {
		b.WriteString("Relevant Entities:\n")
		for _, e := range entities {
			desc := e.Description
			if desc == "" {
				desc = "(no description)"
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", e.Name, e.Type, desc)
		}
	}
	if len(communities) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Community Context:\n")
		for _, c := range communities {
			summary := c.Summary
			if summary == "" {
				summary = "(no summary)"
			}
			fmt.Fprintf(&b, "- [level %d] %s\n", c.Level, summary)
		}
	}
	return b.String()
}

// groundedPrompt builds the tight answer-generation prompt from spec §4.7:
// top-3 entities with truncated descriptions, the query, and a one-sentence
// instruction.
func groundedPrompt(query string, entities []*graphtypes.Entity) string {
	n := len(entities)
	if n > 3 {
		n = 3
	}
	var b strings.Builder
	b.WriteString("Known entities:\n")
	for _, e := range entities[:n] {
		fmt.Fprintf(&b, "- %s (%s): %s\n", e.Name, e.Type, truncate(e.Description, 50))
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	b.WriteString("Answer in one or two sentences, using only the entities above.\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
