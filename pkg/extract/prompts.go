package extract

import (
	"fmt"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// MaxTextLength bounds the text sent to the LLM per call.
const MaxTextLength = 8000

// SystemPrompt instructs the LLM to return structured JSON only.
const SystemPrompt = `You are an entity and relationship extraction assistant for personal data.
Extract named entities AND relationships between them from the given text.
Return ONLY a valid JSON object with two arrays: "entities" and "relationships".
No markdown, no explanation. Start with { and end with }.`

// BuildPrompt constructs the extraction prompt for free text, closing over
// the closed set of acceptable entity types.
func BuildPrompt(text string) string {
	truncated := text
	if len(truncated) > MaxTextLength {
		truncated = truncated[:MaxTextLength]
	}

	var sb strings.Builder
	sb.WriteString(SystemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString("=== ENTITIES ===\n")
	sb.WriteString("Each entity object:\n")
	sb.WriteString("- \"name\": canonical display name (string)\n")
	sb.WriteString(fmt.Sprintf("- \"type\": one of: %s\n", joinTypes(graphtypes.AllEntityTypes)))
	sb.WriteString("- \"confidence\": 0.0-1.0 (number)\n\n")

	sb.WriteString("=== RELATIONSHIPS ===\n")
	sb.WriteString("Each relationship object:\n")
	sb.WriteString("- \"source\": name of the source entity (string)\n")
	sb.WriteString("- \"target\": name of the target entity (string)\n")
	sb.WriteString("- \"relationship\": type tag, e.g. WORKS_AT, KNOWS, LOCATED_IN (string)\n")
	sb.WriteString("- \"confidence\": 0.0-1.0 (number)\n\n")

	sb.WriteString("RULES:\n")
	sb.WriteString("1. Only named entities, not generic terms.\n")
	sb.WriteString("2. Deduplicate entities by name.\n")
	sb.WriteString("3. Only emit a relationship if both endpoints also appear in \"entities\".\n\n")

	sb.WriteString("TEXT:\n")
	sb.WriteString(truncated)
	return sb.String()
}

// BuildPromptWithHints is BuildPrompt with an added "KNOWN ENTITIES" section
// naming names already in the graph that prefix-match words in text, so the
// model is steered toward reusing a canonical spelling rather than minting
// a near-duplicate entity.
func BuildPromptWithHints(text string, known *KnownEntities) string {
	base := BuildPrompt(text)
	if known == nil {
		return base
	}
	hints := known.Hints(text, 20)
	if len(hints) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n=== KNOWN ENTITIES ===\n")
	sb.WriteString("These names already exist in the graph; reuse them exactly if you mean the same entity:\n")
	for _, h := range hints {
		sb.WriteString("- ")
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinTypes(types []graphtypes.EntityType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
