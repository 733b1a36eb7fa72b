package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
	"github.com/kittclouds/graphrag/pkg/llm/synth"
)

// Cancelled is polled between LLM calls and between communities, matching
// spec §4.5's cancellation contract. A nil Cancelled is treated as "never
// cancelled".
type Cancelled func() bool

// Result reports how many communities were summarized and whether the run
// was cut short by cancellation.
type Result struct {
	Summarized int
	Cancelled  bool
}

// Run summarizes every community in s, processing strictly from the deepest
// level down to level 0 so a parent's prompt can cite its children's
// summaries (all children are guaranteed already summarized in-run, since
// they live at a deeper level and are processed first). Each summary is
// persisted via UpdateSummary before its parent is summarized.
func Run(ctx context.Context, s Store, gen llm.Generator, embedder llm.Embedder, cancelled Cancelled, cfg Config, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	maxLevel, err := s.MaxCommunityLevel()
	if err != nil {
		return Result{}, fmt.Errorf("summarize: max level: %w", err)
	}

	childSummaryByID := make(map[string]string)
	var result Result

	for level := maxLevel; level >= 0; level-- {
		if cancelled() {
			result.Cancelled = true
			return result, nil
		}
		communities, err := s.ListByLevel(level)
		if err != nil {
			return result, fmt.Errorf("summarize: list level %d: %w", level, err)
		}
		for _, c := range communities {
			if cancelled() {
				result.Cancelled = true
				return result, nil
			}
			text, err := summarizeOne(ctx, s, gen, embedder, c, childSummaryByID, cfg)
			if err != nil {
				log.Warn("summarize: community skipped", "community_id", c.ID, "err", err)
				continue
			}
			childSummaryByID[c.ID] = text
			result.Summarized++
			log.Info("community summarized", "community_id", c.ID, "level", level)
		}
	}
	return result, nil
}

func summarizeOne(ctx context.Context, s Store, gen llm.Generator, embedder llm.Embedder, c *graphtypes.Community, childSummaries map[string]string, cfg Config) (string, error) {
	var prompt string

	if len(c.ChildIDs) > 0 {
		var summaries []string
		allAvailable := true
		for _, cid := range c.ChildIDs {
			txt, ok := childSummaries[cid]
			if !ok || txt == "" {
				allAvailable = false
				break
			}
			summaries = append(summaries, txt)
		}
		if allAvailable && len(summaries) > 0 {
			prompt = hierarchicalPrompt(summaries)
		}
	}

	if prompt == "" {
		members := make([]*graphtypes.Entity, 0, len(c.MemberIDs))
		for _, id := range c.MemberIDs {
			e, err := s.GetEntity(id)
			if err != nil {
				return "", fmt.Errorf("get entity %s: %w", id, err)
			}
			if e != nil {
				members = append(members, e)
			}
		}
		if len(members) == 0 {
			return "", fmt.Errorf("no resolvable members")
		}
		triples := buildTriples(s, c.MemberIDs)
		prompt = leafPrompt(members, triples, cfg)
	}

	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	text := synth.ToPlainText(raw)
	if text == "" {
		return "", fmt.Errorf("empty summary")
	}

	var embedding []float32
	if embedder != nil {
		vec, err := embedder.Embed(ctx, text)
		if err == nil {
			embedding = vec
		}
	}

	if err := s.UpdateSummary(c.ID, text, embedding); err != nil {
		return "", fmt.Errorf("update summary: %w", err)
	}
	return text, nil
}
