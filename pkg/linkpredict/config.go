// Package linkpredict augments the graph store with edges the extractor
// does not directly produce: a fixed Self-to-entity link per data family,
// per-family template rules, co-mention counting across an extraction
// batch, temporal proximity between timestamped items, and colleague
// inference from shared-employer edges. Grounded on the teacher's
// scanner/discovery package's pattern of a config-driven inference engine
// proposing edges into a shared registry, adapted here to propose directly
// into the graph store.
package linkpredict

import "time"

// Config tunes each inference strategy, matching spec's documented
// defaults.
type Config struct {
	TemporalWindow       time.Duration
	MinCoOccurrenceCount int
	CoOccurrenceWeight   float64
	TemplateWeight       float64

	EnableSelfLinking        bool
	EnableTemplateRules      bool
	EnableCoMention          bool
	EnableTemporalProximity  bool
	EnableColleagueInference bool
}

// DefaultConfig returns spec's §6 link-prediction-config defaults.
func DefaultConfig() Config {
	return Config{
		TemporalWindow:           2 * time.Hour,
		MinCoOccurrenceCount:     2,
		CoOccurrenceWeight:       0.7,
		TemplateWeight:           1.0,
		EnableSelfLinking:        true,
		EnableTemplateRules:      true,
		EnableCoMention:          true,
		EnableTemporalProximity: true,
		EnableColleagueInference: true,
	}
}
