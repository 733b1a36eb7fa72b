package hybrid

import (
	"github.com/kittclouds/graphrag/internal/store"
	"github.com/kittclouds/graphrag/pkg/cypher"
	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// Store is the subset of the graph store the hybrid engine depends on. It
// embeds cypher.Store so the same handle serves both the optional Cypher
// pass and the vector/community search passes.
type Store interface {
	cypher.Store
	GetEntity(id string) (*graphtypes.Entity, error)
	SearchEntities(query []float32, topK int, threshold float64, entityType graphtypes.EntityType) ([]store.ScoredEntity, error)
	SearchCommunities(query []float32, topK int, level int) ([]store.ScoredCommunity, error)
}
