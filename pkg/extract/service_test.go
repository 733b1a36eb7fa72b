package extract

import (
	"testing"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

func TestFilterDropsLowConfidence(t *testing.T) {
	result := Result{
		Entities: []ExtractedEntity{
			{Name: "Ada", Type: graphtypes.TypePerson, Confidence: 0.9},
			{Name: "Maybe", Type: graphtypes.TypePerson, Confidence: 0.3},
		},
		Relationships: []ExtractedRelationship{
			{Source: "Ada", Target: "Acme", Type: graphtypes.RelWorksAt, Confidence: 0.65},
			{Source: "Ada", Target: "Ghost", Type: graphtypes.RelKnows, Confidence: 0.2},
		},
	}
	out := Filter(result, DefaultConfig())
	if len(out.Entities) != 1 || out.Entities[0].Name != "Ada" {
		t.Fatalf("entities = %+v", out.Entities)
	}
	if len(out.Relationships) != 1 {
		t.Fatalf("relationships = %+v", out.Relationships)
	}
}

func TestFilterTruncatesToMax(t *testing.T) {
	cfg := Config{MinEntityConfidence: 0, MinRelationshipConfidence: 0, MaxEntities: 1, MaxRelationships: 1}
	result := Result{
		Entities: []ExtractedEntity{
			{Name: "A", Confidence: 1},
			{Name: "B", Confidence: 1},
		},
	}
	out := Filter(result, cfg)
	if len(out.Entities) != 1 {
		t.Fatalf("entities = %+v, want truncated to 1", out.Entities)
	}
}
