package store

import "github.com/kittclouds/graphrag/pkg/graphtypes"

// Neighbors performs a breadth-first expansion over the undirected edge view
// starting at entityID, to the given depth, optionally restricted to a single
// relationship type. The start id is excluded from the result; each id is
// emitted at most once (first encounter wins on cycles).
func (s *Store) Neighbors(entityID string, depth int, relType string) ([]*graphtypes.Entity, error) {
	if depth <= 0 {
		return nil, nil
	}

	visited := map[string]bool{entityID: true}
	frontier := []string{entityID}
	var orderedIDs []string

	for d := 0; d < depth; d++ {
		var next []string
		for _, id := range frontier {
			rels, err := s.ListForEntity(id)
			if err != nil {
				return nil, err
			}
			for _, r := range rels {
				if relType != "" && r.Type != relType {
					continue
				}
				other := r.TargetID
				if other == id {
					other = r.SourceID
				}
				if other == id || visited[other] {
					continue
				}
				visited[other] = true
				orderedIDs = append(orderedIDs, other)
				next = append(next, other)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	out := make([]*graphtypes.Entity, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		e, err := s.GetEntity(id)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}
