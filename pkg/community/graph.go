package community

import "github.com/kittclouds/graphrag/pkg/graphtypes"

// adjacency is an undirected weighted graph keyed by node id. An edge (a,b)
// contributes w to both adj[a][b] and adj[b][a] ("m2" in spec's notation is
// the sum over this directed view, equal to 2x the undirected edge weight
// sum).
type adjacency map[string]map[string]float64

// buildAdjacency constructs the level-0 graph from entities and
// relationships, treating every relationship as undirected and excluding
// self-loops (an entity related to itself does not contribute degree).
func buildAdjacency(entities []*graphtypes.Entity, relationships []*graphtypes.Relationship) adjacency {
	adj := make(adjacency, len(entities))
	for _, e := range entities {
		adj[e.ID] = make(map[string]float64)
	}
	for _, r := range relationships {
		if r.SourceID == r.TargetID {
			continue
		}
		if _, ok := adj[r.SourceID]; !ok {
			continue
		}
		if _, ok := adj[r.TargetID]; !ok {
			continue
		}
		w := r.Weight
		if w <= 0 {
			w = 1
		}
		adj[r.SourceID][r.TargetID] += w
		adj[r.TargetID][r.SourceID] += w
	}
	return adj
}

// nodeIDs returns adj's keys in map iteration order (unsorted); callers
// that need a deterministic order sort the result.
func (adj adjacency) nodeIDs() []string {
	out := make([]string, 0, len(adj))
	for id := range adj {
		out = append(out, id)
	}
	return out
}

// totalEdgeWeight returns m2, the sum of all directed edge weights.
func (adj adjacency) totalEdgeWeight() float64 {
	var m2 float64
	for _, neighbors := range adj {
		for _, w := range neighbors {
			m2 += w
		}
	}
	return m2
}

// degree returns k_i, node's weighted degree.
func (adj adjacency) degree(node string) float64 {
	var k float64
	for _, w := range adj[node] {
		k += w
	}
	return k
}
