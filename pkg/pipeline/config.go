package pipeline

import (
	"time"

	"github.com/kittclouds/graphrag/pkg/community"
	"github.com/kittclouds/graphrag/pkg/linkpredict"
	"github.com/kittclouds/graphrag/pkg/summarize"
)

// Config recognizes the options named in spec §6, with spec's defaults.
type Config struct {
	BatchSize            int
	BatchDelay           time.Duration
	DetectCommunities    bool
	MaxCommunityDepth    int
	GenerateSummaries    bool
	IncrementalIndexing  bool
	ReindexInterval      time.Duration // 0 disables periodic re-triggering
	EnableLinkPrediction bool
	LinkPrediction       linkpredict.Config
	Community            community.Config
	Summarize            summarize.Config
}

// DefaultConfig returns spec §6's documented defaults.
func DefaultConfig() Config {
	cfg := Config{
		BatchSize:            10,
		BatchDelay:           100 * time.Millisecond,
		DetectCommunities:    true,
		MaxCommunityDepth:    2,
		GenerateSummaries:    true,
		IncrementalIndexing:  true,
		ReindexInterval:      0,
		EnableLinkPrediction: true,
		LinkPrediction:       linkpredict.DefaultConfig(),
		Community:            community.DefaultConfig(),
		Summarize:            summarize.DefaultConfig(),
	}
	cfg.Community.MaxDepth = cfg.MaxCommunityDepth
	return cfg
}
