package community

import (
	"math/rand"
	"sort"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// DetectionResult is the output of Detect: the communities found at every
// retained level, a lookup from entity id to its deepest-level community, and
// the overall modularity of the deepest partition.
type DetectionResult struct {
	Communities       []*graphtypes.Community
	EntityToCommunity map[string]string
	OverallModularity float64
	HierarchyDepth    int
}

// Detect runs hierarchical Louvain over entities and relationships, producing
// communities at each level from 0 (over raw entities) up to cfg.MaxDepth.
// Level L+1 is built by phase-1 optimizing the level-L aggregated graph; a
// level stops being produced once the graph stops shrinking or fewer than
// two communities would result.
func Detect(entities []*graphtypes.Entity, relationships []*graphtypes.Relationship, cfg Config) DetectionResult {
	if cfg.MaxIterations <= 0 {
		cfg = DefaultConfig()
	}

	adj := buildAdjacency(entities, relationships)
	if len(adj) == 0 {
		return DetectionResult{EntityToCommunity: map[string]string{}}
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))

	// members[level] maps a level-L node id to the set of original entity
	// ids it aggregates.
	members := map[string][]string{}
	for id := range adj {
		members[id] = []string{id}
	}

	var result DetectionResult
	result.EntityToCommunity = make(map[string]string, len(adj))

	level := 0
	prevSize := len(adj)
	for {
		assignment, modularity := localMove(adj, cfg, rng)
		communityMembers := groupByCommunity(assignment)

		var levelCommunities []*graphtypes.Community
		for _, nodeIDs := range communityMembers {
			seed := lowestOf(nodeIDs)
			cid := graphtypes.DeriveCommunityID(level, seed)
			var entityIDs []string
			for _, nodeID := range nodeIDs {
				entityIDs = append(entityIDs, members[nodeID]...)
			}
			sort.Strings(entityIDs)
			if len(entityIDs) < cfg.MinCommunitySize {
				continue
			}
			levelCommunities = append(levelCommunities, &graphtypes.Community{
				ID:         cid,
				Level:      level,
				MemberIDs:  entityIDs,
				Modularity: modularity,
			})
			for _, eid := range entityIDs {
				result.EntityToCommunity[eid] = cid
			}
		}
		result.Communities = append(result.Communities, levelCommunities...)
		result.OverallModularity = modularity
		result.HierarchyDepth = level + 1
		if level > 0 {
			linkParents(result.Communities, level)
		}

		if level+1 > cfg.MaxDepth {
			break
		}
		if len(communityMembers) < 2 {
			break
		}

		nextAdj, nextMembers := aggregate(adj, assignment, members, level)
		if len(nextAdj) >= prevSize {
			break
		}
		prevSize = len(nextAdj)
		adj = nextAdj
		members = nextMembers
		level++
	}

	return result
}

// localMove runs phase 1: repeatedly move nodes to the neighboring community
// that most increases modularity until no move improves it by more than
// cfg.MinImprovement, or cfg.MaxIterations rounds have run. Returns the final
// node->community assignment and the resulting modularity.
func localMove(adj adjacency, cfg Config, rng *rand.Rand) (map[string]string, float64) {
	nodes := adj.nodeIDs()
	sort.Strings(nodes)

	community := make(map[string]string, len(nodes))
	for _, n := range nodes {
		community[n] = n
	}

	m2 := adj.totalEdgeWeight()
	if m2 == 0 {
		return community, 0
	}

	sigmaTot := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		sigmaTot[community[n]] = adj.degree(n)
	}

	order := make([]string, len(nodes))
	copy(order, nodes)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		moved := false
		for _, n := range order {
			kI := adj.degree(n)
			currentComm := community[n]
			sigmaTot[currentComm] -= kI

			neighborWeight := make(map[string]float64)
			// first-seen order (over sorted neighbor ids) for deterministic tie-break.
			neighborIDs := make([]string, 0, len(adj[n]))
			for neighbor := range adj[n] {
				neighborIDs = append(neighborIDs, neighbor)
			}
			sort.Strings(neighborIDs)
			var seenOrder []string
			for _, neighbor := range neighborIDs {
				w := adj[n][neighbor]
				c := community[neighbor]
				if _, ok := neighborWeight[c]; !ok {
					seenOrder = append(seenOrder, c)
				}
				neighborWeight[c] += w
			}

			bestComm := currentComm
			bestDelta := 0.0
			for _, c := range seenOrder {
				kIIn := neighborWeight[c]
				delta := kIIn/m2 - cfg.Resolution*(sigmaTot[c]*kI)/(m2*m2)
				if delta > bestDelta+cfg.MinImprovement {
					bestDelta = delta
					bestComm = c
				}
			}

			sigmaTot[bestComm] += kI
			if bestComm != currentComm {
				community[n] = bestComm
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	return community, modularity(adj, community, m2, cfg.Resolution)
}

// modularity computes Q = sum_c [ (sum_in_c)/m2 - resolution*(sigma_tot_c/m2)^2 ].
func modularity(adj adjacency, community map[string]string, m2 float64, resolution float64) float64 {
	if m2 == 0 {
		return 0
	}
	sumIn := make(map[string]float64)
	sigmaTot := make(map[string]float64)
	for n, neighbors := range adj {
		c := community[n]
		sigmaTot[c] += adj.degree(n)
		for neighbor, w := range neighbors {
			if community[neighbor] == c {
				sumIn[c] += w
			}
		}
	}
	var q float64
	for c, tot := range sigmaTot {
		q += sumIn[c]/m2 - resolution*(tot/m2)*(tot/m2)
	}
	return q
}

// groupByCommunity buckets node ids by their assigned community, returning
// groups in a stable order (sorted by each group's lowest member id).
func groupByCommunity(assignment map[string]string) [][]string {
	byComm := make(map[string][]string)
	for node, comm := range assignment {
		byComm[comm] = append(byComm[comm], node)
	}
	groups := make([][]string, 0, len(byComm))
	for _, nodes := range byComm {
		sort.Strings(nodes)
		groups = append(groups, nodes)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func lowestOf(ids []string) string {
	lowest := ids[0]
	for _, id := range ids[1:] {
		if id < lowest {
			lowest = id
		}
	}
	return lowest
}

// aggregate builds phase 2's coarsened graph: nodes sharing a community
// collapse into one super-node (id = community id at this level), edge
// weights between two super-nodes sum every inter-community edge weight
// between their members, and self-loops (intra-community mass) are dropped.
func aggregate(adj adjacency, assignment map[string]string, members map[string][]string, level int) (adjacency, map[string][]string) {
	groups := groupByCommunity(assignment)

	superID := make(map[string]string, len(groups))
	nextMembers := make(map[string][]string, len(groups))
	for _, nodes := range groups {
		id := graphtypes.DeriveCommunityID(level, lowestOf(nodes))
		var entityIDs []string
		for _, n := range nodes {
			entityIDs = append(entityIDs, members[n]...)
		}
		for _, n := range nodes {
			superID[n] = id
		}
		nextMembers[id] = entityIDs
	}

	next := make(adjacency, len(groups))
	for _, id := range superID {
		if _, ok := next[id]; !ok {
			next[id] = make(map[string]float64)
		}
	}
	for n, neighbors := range adj {
		srcSuper := superID[n]
		for neighbor, w := range neighbors {
			dstSuper := superID[neighbor]
			if srcSuper == dstSuper {
				continue // drop self-loops / intra-community mass
			}
			next[srcSuper][dstSuper] += w
		}
	}

	return next, nextMembers
}

// linkParents records, for every community at newLevel-1, which community at
// newLevel (the level just produced) is its parent, and appends each child's
// id to that parent's ChildIDs. The caller invokes it right after each level
// above 0 is produced.
func linkParents(communities []*graphtypes.Community, newLevel int) {
	// Parent/child linkage is derived structurally: a level L community's
	// MemberIDs is a superset of each level L-1 community's MemberIDs whose
	// members it fully contains. Compute this once both levels exist.
	var prevLevel, currLevel []*graphtypes.Community
	for _, c := range communities {
		if c.Level == newLevel-1 {
			prevLevel = append(prevLevel, c)
		} else if c.Level == newLevel {
			currLevel = append(currLevel, c)
		}
	}
	for _, child := range prevLevel {
		childSet := toSet(child.MemberIDs)
		for _, parent := range currLevel {
			if isSubset(childSet, parent.MemberIDs) {
				child.ParentID = parent.ID
				parent.ChildIDs = append(parent.ChildIDs, child.ID)
				break
			}
		}
	}
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func isSubset(sub map[string]bool, superset []string) bool {
	supSet := toSet(superset)
	for id := range sub {
		if !supSet[id] {
			return false
		}
	}
	return true
}
