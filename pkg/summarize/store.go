package summarize

import "github.com/kittclouds/graphrag/pkg/graphtypes"

// Store is the subset of the graph store the summarizer depends on.
type Store interface {
	GetEntity(id string) (*graphtypes.Entity, error)
	ListForEntity(id string) ([]*graphtypes.Relationship, error)
	ListByLevel(level int) ([]*graphtypes.Community, error)
	MaxCommunityLevel() (int, error)
	UpdateSummary(id, text string, embedding []float32) error
}
