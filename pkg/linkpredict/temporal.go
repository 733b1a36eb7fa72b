package linkpredict

import (
	"sort"
	"time"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
)

// TimedItem is one entity with an associated event timestamp, for temporal
// proximity inference.
type TimedItem struct {
	EntityID  string
	Timestamp int64 // ms epoch
}

// TemporalProximity emits TEMPORALLY_PROXIMATE between every pair of items
// whose timestamps fall within window of each other, confidence decaying
// linearly from 1 (zero gap) to 0 (gap == window).
func TemporalProximity(s Store, items []TimedItem, window time.Duration, nowMillis int64) int {
	sorted := make([]TimedItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	windowMillis := window.Milliseconds()
	if windowMillis <= 0 {
		return 0
	}

	count := 0
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			gap := sorted[j].Timestamp - sorted[i].Timestamp
			if gap > windowMillis {
				break // sorted ascending; no later j can be closer
			}
			if sorted[i].EntityID == sorted[j].EntityID {
				continue
			}
			confidence := 1 - float64(gap)/float64(windowMillis)
			if confidence <= 0 {
				continue
			}
			rel := &graphtypes.Relationship{
				ID:        graphtypes.DeriveRelationshipID(sorted[i].EntityID, graphtypes.RelTemporallyProximate, sorted[j].EntityID),
				SourceID:  sorted[i].EntityID,
				TargetID:  sorted[j].EntityID,
				Type:      graphtypes.RelTemporallyProximate,
				Weight:    confidence,
				CreatedAt: nowMillis,
			}
			if err := s.AddRelationship(rel); err == nil {
				count++
			}
		}
	}
	return count
}
