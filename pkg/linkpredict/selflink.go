package linkpredict

import (
	"context"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
)

// selfDescriptor is the fixed text embedded for the Self entity, when an
// embedder is available.
const selfDescriptor = "You, the device owner and central node of this knowledge graph."

// Store is the subset of internal/store's *store.Store linkpredict depends on,
// letting tests substitute a fake without importing the concrete store
// package's sqlite wiring.
type Store interface {
	GetEntity(id string) (*graphtypes.Entity, error)
	AddEntity(e *graphtypes.Entity) error
	AddRelationship(r *graphtypes.Relationship) error
	ListForEntity(id string) ([]*graphtypes.Relationship, error)
	ListByType(t graphtypes.EntityType) ([]*graphtypes.Entity, error)
}

// EnsureSelf creates the singleton Self entity if it does not already
// exist, optionally embedding its fixed descriptor text.
func EnsureSelf(ctx context.Context, s Store, embedder llm.Embedder, nowMillis int64) error {
	existing, err := s.GetEntity(graphtypes.SelfEntityID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	self := &graphtypes.Entity{
		ID:           graphtypes.SelfEntityID,
		Name:         "You",
		Type:         graphtypes.TypeSelf,
		CreatedAt:    nowMillis,
		LastModified: nowMillis,
	}
	if embedder != nil {
		vec, err := embedder.Embed(ctx, selfDescriptor)
		if err == nil {
			self.Embedding = vec
		}
	}
	return s.AddEntity(self)
}

// LinkSelf emits SELF -> entityID with the family's fixed relation type
// (graphtypes.SelfRelationFor), upserting idempotently.
func LinkSelf(s Store, entityID string, family graphtypes.DataFamily, nowMillis int64) error {
	relType := graphtypes.SelfRelationFor(family)
	rel := &graphtypes.Relationship{
		ID:        graphtypes.DeriveRelationshipID(graphtypes.SelfEntityID, relType, entityID),
		SourceID:  graphtypes.SelfEntityID,
		TargetID:  entityID,
		Type:      relType,
		Weight:    1.0,
		CreatedAt: nowMillis,
	}
	return s.AddRelationship(rel)
}
