package hybrid

import "sort"

// scoredEntry accumulates a reciprocal-rank-fusion score for one id across
// every ranked list it appeared in, tracking which source contributed the
// most so callers can explain a result's provenance.
type scoredEntry struct {
	id            string
	score         float64
	dominantFrom  string
	dominantScore float64
}

// rrfFuse combines several ranked id lists into one fused ranking. Each
// list contributes 1/(rrfK+rank) per entry (rank is 1-based), scaled by
// that list's weight; per-id contributions accumulate across lists.
func rrfFuse(rrfK int, lists map[string][]string, weights map[string]float64) []scoredEntry {
	acc := make(map[string]*scoredEntry)
	var order []string

	for source, ids := range lists {
		w := weights[source]
		if w == 0 {
			continue
		}
		for rank, id := range ids {
			contribution := w / float64(rrfK+rank+1)
			e, ok := acc[id]
			if !ok {
				e = &scoredEntry{id: id}
				acc[id] = e
				order = append(order, id)
			}
			e.score += contribution
			if contribution > e.dominantScore {
				e.dominantScore = contribution
				e.dominantFrom = source
			}
		}
	}

	out := make([]scoredEntry, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}
