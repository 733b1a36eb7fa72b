// Package extract turns raw platform records and free text into graph
// entities and relationships, via two extractor variants behind one
// interface: a deterministic direct extractor for structured records
// (contacts, calendar events, photos, phone calls) and an LLM-backed
// extractor for free text and as a fallback, grounded on the teacher's
// pkg/extraction package's prompt/parse/repair structure.
package extract

import "github.com/kittclouds/graphrag/pkg/graphtypes"

// ExtractedEntity is a candidate entity named by an extraction pass, not yet
// resolved to a stable id (that happens once it's merged into the graph via
// graphtypes.DeriveEntityID).
type ExtractedEntity struct {
	Name        string
	Type        graphtypes.EntityType
	Description string
	Attributes  map[string]string
	Confidence  float64
}

// ExtractedRelationship is a candidate edge named by source/target entity
// names rather than resolved ids, since the entities they reference may be
// produced in the same pass.
type ExtractedRelationship struct {
	Source     string
	Target     string
	Type       string
	Confidence float64
	Metadata   map[string]string
}

// Result is the unified output of either extractor variant for one source
// item.
type Result struct {
	Entities      []ExtractedEntity
	Relationships []ExtractedRelationship
	SourceID      string
	SourceType    graphtypes.DataFamily
}

// Config tunes confidence filtering and output size, matching spec's
// defaults.
type Config struct {
	MinEntityConfidence       float64
	MinRelationshipConfidence float64
	MaxEntities               int
	MaxRelationships          int
}

// DefaultConfig returns spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MinEntityConfidence:       0.7,
		MinRelationshipConfidence: 0.6,
		MaxEntities:               50,
		MaxRelationships:          50,
	}
}
