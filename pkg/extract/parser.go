package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// ParseLLMResponse parses a raw LLM completion into entities/relationships,
// following spec's layered robustness rules: strip fences, parse directly,
// repair a truncated payload, then fall back to regex extraction. Confidence
// filtering and truncation are applied by the caller (Config), not here.
func ParseLLMResponse(raw string) ([]ExtractedEntity, []ExtractedRelationship, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, nil, nil
	}
	if idx := strings.IndexByte(cleaned, '{'); idx > 0 {
		cleaned = cleaned[idx:]
	}

	if ents, rels, ok := tryParse(cleaned); ok {
		return ents, rels, nil
	}

	repaired := repairTruncatedJSON(cleaned)
	if ents, rels, ok := tryParse(repaired); ok {
		return ents, rels, nil
	}

	ents := regexEntities(cleaned)
	rels := regexRelationships(cleaned, ents)
	if len(ents) == 0 && len(rels) == 0 {
		return nil, nil, fmt.Errorf("extract: failed to parse LLM response")
	}
	return ents, dedupRelationships(rels), nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// rawDoc is the shape directly unmarshaled from a well-formed response,
// using generic maps so key synonyms can be resolved per-item.
type rawDoc struct {
	Entities      []map[string]any `json:"entities"`
	Relationships []map[string]any `json:"relationships"`
	Relations     []map[string]any `json:"relations"` // synonym
}

func tryParse(s string) ([]ExtractedEntity, []ExtractedRelationship, bool) {
	var doc rawDoc
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, nil, false
	}
	relRaw := doc.Relationships
	if len(relRaw) == 0 {
		relRaw = doc.Relations
	}
	ents := make([]ExtractedEntity, 0, len(doc.Entities))
	for _, m := range doc.Entities {
		if e, ok := entityFromMap(m); ok {
			ents = append(ents, e)
		}
	}
	rels := make([]ExtractedRelationship, 0, len(relRaw))
	for _, m := range relRaw {
		if r, ok := relationFromMap(m); ok {
			rels = append(rels, r)
		}
	}
	return ents, dedupRelationships(rels), true
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func floatField(m map[string]any, def float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f
			}
		}
	}
	return def
}

func entityFromMap(m map[string]any) (ExtractedEntity, bool) {
	name := stringField(m, "name", "entity", "label", "entity_name")
	typ := stringField(m, "type", "kind")
	if name == "" {
		return ExtractedEntity{}, false
	}
	typ = normalizeTag(typ)
	if typ == "" || !graphtypes.IsValidEntityType(typ) {
		return ExtractedEntity{}, false
	}
	return ExtractedEntity{
		Name:        name,
		Type:        graphtypes.EntityType(typ),
		Description: stringField(m, "description"),
		Confidence:  floatField(m, 0.8, "confidence"),
	}, true
}

func relationFromMap(m map[string]any) (ExtractedRelationship, bool) {
	source := stringField(m, "source", "sourceEntity", "entity1", "from", "subject")
	target := stringField(m, "target", "targetEntity", "entity2", "to", "object")
	relType := stringField(m, "relationship", "relation", "relationship_type", "type", "relationType")
	if source == "" || target == "" || relType == "" {
		return ExtractedRelationship{}, false
	}
	return ExtractedRelationship{
		Source:     source,
		Target:     target,
		Type:       normalizeTag(relType),
		Confidence: floatField(m, 0.7, "confidence"),
	}, true
}

// normalizeTag uppercases and underscore-normalizes a type tag.
func normalizeTag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// repairTruncatedJSON closes an open string, trims a trailing "," or ":",
// and appends balancing "]"/"}" counts, tracked by a single scan that
// respects string state and backslash escapes.
func repairTruncatedJSON(s string) string {
	var depthBrace, depthBracket int
	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depthBrace++
			}
		case '}':
			if !inString {
				depthBrace--
			}
		case '[':
			if !inString {
				depthBracket++
			}
		case ']':
			if !inString {
				depthBracket--
			}
		}
	}

	out := s
	if inString {
		out += `"`
	}
	out = strings.TrimRight(out, " \t\n\r")
	out = strings.TrimRight(out, ",:")

	for i := 0; i < depthBracket; i++ {
		out += "]"
	}
	for i := 0; i < depthBrace; i++ {
		out += "}"
	}
	return out
}

var entityObjectPattern = regexp.MustCompile(`\{\s*"name"\s*:\s*"([^"]+)"\s*,\s*"type"\s*:\s*"([^"]+)"`)

func regexEntities(s string) []ExtractedEntity {
	matches := entityObjectPattern.FindAllStringSubmatch(s, -1)
	ents := make([]ExtractedEntity, 0, len(matches))
	for _, m := range matches {
		typ := normalizeTag(m[2])
		if !graphtypes.IsValidEntityType(typ) {
			continue
		}
		ents = append(ents, ExtractedEntity{
			Name:       strings.TrimSpace(m[1]),
			Type:       graphtypes.EntityType(typ),
			Confidence: 0.8,
		})
	}
	return ents
}

var relationObjectPattern = regexp.MustCompile(
	`\{\s*"source"\s*:\s*"([^"]+)"\s*,\s*"target"\s*:\s*"([^"]+)"\s*,\s*"(?:relationship|relation|type)"\s*:\s*"([^"]+)"`)

// regexRelationships extracts relationships only for pairs where both
// endpoint names were also extracted as entities, preventing orphan edges.
func regexRelationships(s string, knownEntities []ExtractedEntity) []ExtractedRelationship {
	known := make(map[string]bool, len(knownEntities))
	for _, e := range knownEntities {
		known[strings.ToLower(e.Name)] = true
	}
	matches := relationObjectPattern.FindAllStringSubmatch(s, -1)
	rels := make([]ExtractedRelationship, 0, len(matches))
	for _, m := range matches {
		source, target := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if !known[strings.ToLower(source)] || !known[strings.ToLower(target)] {
			continue
		}
		rels = append(rels, ExtractedRelationship{
			Source:     source,
			Target:     target,
			Type:       normalizeTag(m[3]),
			Confidence: 0.7,
		})
	}
	return rels
}

// dedupRelationships removes relationships sharing the same
// (source_lc, target_lc, type_lc) key, keeping the first occurrence.
func dedupRelationships(rels []ExtractedRelationship) []ExtractedRelationship {
	seen := make(map[string]bool, len(rels))
	out := make([]ExtractedRelationship, 0, len(rels))
	for _, r := range rels {
		key := strings.ToLower(r.Source) + "|" + strings.ToLower(r.Target) + "|" + strings.ToLower(r.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
