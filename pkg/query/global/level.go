package global

import "strings"

// broadKeywords and specificKeywords drive the keyword-table level heuristic
// (spec §4.9's "broad -> level 0; thematic -> middle; specific -> deepest").
// There is no separate thematic list: a query matching neither table falls
// back to the middle level.
var (
	broadKeywords    = []string{"overview", "summary", "overall", "in general", "what is this about"}
	specificKeywords = []string{"specifically", "exact", "precisely", "which", "who is", "what time"}
)

// selectLevel picks a community level for query when cfg.CommunityLevel is
// negative, clamped to [0, maxLevel]. A non-negative cfg.CommunityLevel is
// used as-is (still clamped). maxLevel of -1 (no communities at all) passes
// through unclamped so the caller's ListByLevel call simply finds nothing.
func selectLevel(query string, cfg Config, maxLevel int) int {
	if maxLevel < 0 {
		return maxLevel
	}
	level := cfg.CommunityLevel
	if level < 0 {
		level = heuristicLevel(query, maxLevel)
	}
	if level < 0 {
		level = 0
	}
	if level > maxLevel {
		level = maxLevel
	}
	return level
}

func heuristicLevel(query string, maxLevel int) int {
	lower := strings.ToLower(query)
	for _, kw := range broadKeywords {
		if strings.Contains(lower, kw) {
			return 0
		}
	}
	for _, kw := range specificKeywords {
		if strings.Contains(lower, kw) {
			return maxLevel
		}
	}
	return maxLevel / 2
}
