package extract

import "testing"

func TestParseLLMResponseDirect(t *testing.T) {
	raw := `{"entities":[{"name":"Ada Lovelace","type":"PERSON","confidence":0.9}],` +
		`"relationships":[{"source":"Ada Lovelace","target":"Analytical Engine","relationship":"CREATED_BY","confidence":0.8}]}`
	ents, rels, err := ParseLLMResponse(raw)
	if err != nil {
		t.Fatalf("ParseLLMResponse: %v", err)
	}
	if len(ents) != 1 || ents[0].Name != "Ada Lovelace" {
		t.Fatalf("entities = %+v", ents)
	}
	if len(rels) != 1 || rels[0].Type != "CREATED_BY" {
		t.Fatalf("relationships = %+v", rels)
	}
}

func TestParseLLMResponseStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"entities\":[{\"name\":\"Bob\",\"type\":\"person\"}],\"relationships\":[]}\n```"
	ents, _, err := ParseLLMResponse(raw)
	if err != nil {
		t.Fatalf("ParseLLMResponse: %v", err)
	}
	if len(ents) != 1 || ents[0].Type != "PERSON" {
		t.Fatalf("entities = %+v, want normalized PERSON type", ents)
	}
}

func TestParseLLMResponseKeySynonyms(t *testing.T) {
	raw := `{"entities":[{"entity_name":"Acme Corp","kind":"organization"}],` +
		`"relations":[{"entity1":"Acme Corp","entity2":"Acme Corp","relationship_type":"related to"}]}`
	ents, rels, err := ParseLLMResponse(raw)
	if err != nil {
		t.Fatalf("ParseLLMResponse: %v", err)
	}
	if len(ents) != 1 || ents[0].Type != "ORGANIZATION" {
		t.Fatalf("entities = %+v", ents)
	}
	if len(rels) != 1 || rels[0].Type != "RELATED_TO" {
		t.Fatalf("relationships = %+v", rels)
	}
}

func TestParseLLMResponseRepairsTruncatedJSON(t *testing.T) {
	raw := `{"entities":[{"name":"Ada","type":"PERSON","confidence":0.9}],"relationships":[`
	ents, _, err := ParseLLMResponse(raw)
	if err != nil {
		t.Fatalf("ParseLLMResponse: %v", err)
	}
	if len(ents) != 1 || ents[0].Name != "Ada" {
		t.Fatalf("entities after repair = %+v", ents)
	}
}

func TestParseLLMResponseRegexFallbackDropsOrphanRelations(t *testing.T) {
	raw := `garbage {"name":"Ada","type":"PERSON"} more garbage ` +
		`{"source":"Ada","target":"Ghost","relationship":"KNOWS"} trailing junk {{{`
	ents, rels, err := ParseLLMResponse(raw)
	if err != nil {
		t.Fatalf("ParseLLMResponse: %v", err)
	}
	if len(ents) != 1 {
		t.Fatalf("entities = %+v, want 1", ents)
	}
	if len(rels) != 0 {
		t.Fatalf("relationships = %+v, want 0 (Ghost not a known entity)", rels)
	}
}

func TestParseLLMResponseEmptyInput(t *testing.T) {
	ents, rels, err := ParseLLMResponse("   ")
	if err != nil || ents != nil || rels != nil {
		t.Fatalf("empty input = %v, %v, %v", ents, rels, err)
	}
}

func TestDedupRelationships(t *testing.T) {
	rels := []ExtractedRelationship{
		{Source: "A", Target: "B", Type: "KNOWS"},
		{Source: "a", Target: "b", Type: "knows"},
		{Source: "A", Target: "C", Type: "KNOWS"},
	}
	got := dedupRelationships(rels)
	if len(got) != 2 {
		t.Fatalf("dedupRelationships = %+v, want 2 entries", got)
	}
}
