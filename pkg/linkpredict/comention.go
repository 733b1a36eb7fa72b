package linkpredict

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// Mention is one source item's resolved entity ids, for co-mention counting
// across a batch.
type Mention struct {
	SourceID  string
	EntityIDs []string
}

// maxSampleSourceIDs bounds how many source ids are recorded as evidence per
// pair, so the metadata blob stays small for heavily co-mentioned pairs.
const maxSampleSourceIDs = 5

// CoMention counts, for each unordered pair of entities appearing in
// mentions, the number of source items containing both. Pairs meeting
// minCount emit MENTIONED_WITH with confidence
// clamp(count/len(mentions), 0, 1) * coOccurrenceWeight, and metadata
// recording the count and a sample of source ids.
func CoMention(s Store, mentions []Mention, minCount int, coOccurrenceWeight float64, nowMillis int64) int {
	type pairInfo struct {
		count   int
		sources []string
	}
	pairs := make(map[string]*pairInfo)

	for _, m := range mentions {
		ids := uniqueSorted(m.EntityIDs)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				key := ids[i] + "\x00" + ids[j]
				info, ok := pairs[key]
				if !ok {
					info = &pairInfo{}
					pairs[key] = info
				}
				info.count++
				if len(info.sources) < maxSampleSourceIDs {
					info.sources = append(info.sources, m.SourceID)
				}
			}
		}
	}

	total := len(mentions)
	count := 0
	for key, info := range pairs {
		if info.count < minCount {
			continue
		}
		parts := strings.SplitN(key, "\x00", 2)
		a, b := parts[0], parts[1]

		confidence := coOccurrenceWeight
		if total > 0 {
			ratio := float64(info.count) / float64(total)
			if ratio > 1 {
				ratio = 1
			}
			confidence = ratio * coOccurrenceWeight
		}

		rel := &graphtypes.Relationship{
			ID:        graphtypes.DeriveRelationshipID(a, graphtypes.RelMentionedWith, b),
			SourceID:  a,
			TargetID:  b,
			Type:      graphtypes.RelMentionedWith,
			Weight:    confidence,
			CreatedAt: nowMillis,
			Metadata: map[string]string{
				"co_occurrence_count": strconv.Itoa(info.count),
				"sample_source_ids":   strings.Join(info.sources, ","),
			},
		}
		if err := s.AddRelationship(rel); err == nil {
			count++
		}
	}
	return count
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
