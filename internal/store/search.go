package store

import (
	"sort"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/vecutil"
)

// ScoredEntity pairs an entity with its similarity score against a query
// vector.
type ScoredEntity struct {
	Entity *graphtypes.Entity
	Score  float64
}

// ScoredCommunity pairs a community with its similarity score.
type ScoredCommunity struct {
	Community *graphtypes.Community
	Score     float64
}

// SearchEntities runs an exhaustive cosine scan over entities of the given
// type (all types if entityType is empty), filters by threshold, orders
// descending by score, and truncates to topK. Fails fast on a dimension
// mismatch between query and store.
func (s *Store) SearchEntities(query []float32, topK int, threshold float64, entityType graphtypes.EntityType) ([]ScoredEntity, error) {
	dim := s.Dimension()
	if dim > 0 && len(query) != dim {
		return nil, &DimensionMismatchError{Expected: dim, Actual: len(query)}
	}

	candidates, err := s.ListByTypeWithEmbeddings(entityType)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredEntity, 0, len(candidates))
	for _, e := range candidates {
		if len(e.Embedding) == 0 {
			continue
		}
		score := vecutil.Cosine(query, e.Embedding)
		if score < threshold {
			continue
		}
		scored = append(scored, ScoredEntity{Entity: e, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK >= 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// SearchCommunities runs an exhaustive cosine scan over communities at the
// given level (all levels if level < 0), orders descending by score, and
// truncates to topK. Unlike SearchEntities, spec's community search has no
// threshold: callers wanting a cutoff filter the returned slice themselves.
func (s *Store) SearchCommunities(query []float32, topK int, level int) ([]ScoredCommunity, error) {
	dim := s.Dimension()
	if dim > 0 && len(query) != dim {
		return nil, &DimensionMismatchError{Expected: dim, Actual: len(query)}
	}

	var candidates []*graphtypes.Community
	if level >= 0 {
		cs, err := s.ListByLevel(level)
		if err != nil {
			return nil, err
		}
		candidates = cs
	} else {
		maxLevel, err := s.MaxCommunityLevel()
		if err != nil {
			return nil, err
		}
		for l := 0; l <= maxLevel; l++ {
			cs, err := s.ListByLevel(l)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, cs...)
		}
	}

	scored := make([]ScoredCommunity, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score := vecutil.Cosine(query, c.Embedding)
		scored = append(scored, ScoredCommunity{Community: c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK >= 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
