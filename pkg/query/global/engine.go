// Package global implements the map-reduce query engine: score every
// community summary at a chosen level against the user's question, keep
// the helpful ones, and synthesize a final answer citing the kept reports.
// Grounded on icyfire-langgraphgo's sequential graph-of-nodes execution
// model (no fan-out goroutines touching the LLM collaborator, since it is
// not concurrency-safe), adapted to this module's llm.Generator interface.
package global

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
	"github.com/kittclouds/graphrag/pkg/llm/synth"
)

// Store is the subset of the graph store the global engine depends on.
type Store interface {
	ListByLevel(level int) ([]*graphtypes.Community, error)
	MaxCommunityLevel() (int, error)
}

// CommunityAnswer is one community's map-phase output, scored and ranked.
type CommunityAnswer struct {
	CommunityID string
	Summary     string
	Answer      string
	Score       int
	Level       int
}

// Result is the full map-reduce output.
type Result struct {
	Answer           string
	CommunityAnswers []CommunityAnswer
	CommunitiesSeen  int
	CommunitiesUsed  int
	MapDuration      time.Duration
	ReduceDuration   time.Duration
}

const insufficientInformation = "There is not enough indexed information to answer this question."

// Engine runs global map-reduce queries against a Store using a
// non-concurrent-safe Generator.
type Engine struct {
	Store     Store
	Generator llm.Generator
	Config    Config
}

// New returns an Engine.
func New(s Store, gen llm.Generator, cfg Config) *Engine {
	return &Engine{Store: s, Generator: gen, Config: cfg}
}

// Query runs the map-reduce pipeline for query and returns the synthesized
// answer. A graph with no summarized communities at the chosen level yields
// the canonical insufficient-information response rather than an error.
func (eng *Engine) Query(ctx context.Context, query string) (*Result, error) {
	maxLevel, err := eng.Store.MaxCommunityLevel()
	if err != nil {
		return nil, fmt.Errorf("global: max level: %w", err)
	}
	level := selectLevel(query, eng.Config, maxLevel)

	communities, err := eng.Store.ListByLevel(level)
	if err != nil {
		return nil, fmt.Errorf("global: list level %d: %w", level, err)
	}

	mapStart := time.Now()
	var mapped []CommunityAnswer
	for _, c := range communities {
		if c.Summary == "" {
			continue
		}
		answer, score, err := eng.mapOne(ctx, c, query)
		if err != nil {
			continue
		}
		mapped = append(mapped, CommunityAnswer{
			CommunityID: c.ID, Summary: c.Summary, Answer: answer, Score: score, Level: level,
		})
	}
	mapDuration := time.Since(mapStart)

	var kept []CommunityAnswer
	for _, m := range mapped {
		if m.Score >= eng.Config.MinHelpfulnessScore {
			kept = append(kept, m)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	reduceStart := time.Now()
	if len(kept) == 0 {
		return &Result{
			Answer: insufficientInformation, CommunitiesSeen: len(communities),
			MapDuration: mapDuration, ReduceDuration: time.Since(reduceStart),
		}, nil
	}

	selected := eng.selectWithinBudget(kept)
	answer, err := eng.reduce(ctx, query, selected)
	if err != nil {
		return nil, fmt.Errorf("global: reduce: %w", err)
	}
	return &Result{
		Answer: answer, CommunityAnswers: selected,
		CommunitiesSeen: len(communities), CommunitiesUsed: len(selected),
		MapDuration: mapDuration, ReduceDuration: time.Since(reduceStart),
	}, nil
}

// QueryStream runs the map and filter/rank phases synchronously, then
// streams the final synthesis call's tokens as they arrive.
func (eng *Engine) QueryStream(ctx context.Context, query string, streamGen llm.StreamGenerator) (*Result, <-chan string, <-chan error, error) {
	maxLevel, err := eng.Store.MaxCommunityLevel()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("global: max level: %w", err)
	}
	level := selectLevel(query, eng.Config, maxLevel)
	communities, err := eng.Store.ListByLevel(level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("global: list level %d: %w", level, err)
	}

	var mapped []CommunityAnswer
	for _, c := range communities {
		if c.Summary == "" {
			continue
		}
		answer, score, err := eng.mapOne(ctx, c, query)
		if err != nil {
			continue
		}
		mapped = append(mapped, CommunityAnswer{CommunityID: c.ID, Summary: c.Summary, Answer: answer, Score: score, Level: level})
	}
	var kept []CommunityAnswer
	for _, m := range mapped {
		if m.Score >= eng.Config.MinHelpfulnessScore {
			kept = append(kept, m)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	if len(kept) == 0 {
		empty := make(chan string, 1)
		empty <- insufficientInformation
		close(empty)
		noErr := make(chan error)
		close(noErr)
		return &Result{Answer: insufficientInformation, CommunitiesSeen: len(communities)}, empty, noErr, nil
	}

	selected := eng.selectWithinBudget(kept)
	tokens, errs := streamGen.GenerateStream(ctx, reducePrompt(query, selected, eng.Config.ResponseType))
	return &Result{CommunityAnswers: selected, CommunitiesSeen: len(communities), CommunitiesUsed: len(selected)}, tokens, errs, nil
}

var scoreLine = regexp.MustCompile(`(?i)SCORE:\s*(-?\d+)`)

// mapOne issues one map-phase call for a single community, parsing its
// leading "SCORE: <0-100>" line and treating the remainder as the answer.
func (eng *Engine) mapOne(ctx context.Context, c *graphtypes.Community, query string) (string, int, error) {
	prompt := fmt.Sprintf(
		"Community report:\n%s\n\nUser question: %s\n\nRate how helpful this report is for answering the question on a scale of 0-100, then answer using only this report. Respond with a first line \"SCORE: <0-100>\" followed by your answer.",
		c.Summary, query,
	)
	raw, err := eng.Generator.Generate(ctx, prompt)
	if err != nil {
		return "", 0, err
	}
	score := 0
	answer := raw
	if m := scoreLine.FindStringSubmatchIndex(raw); m != nil {
		if n, err := strconv.Atoi(raw[m[2]:m[3]]); err == nil {
			score = clamp(n, 0, 100)
		}
		answer = strings.TrimSpace(raw[m[1]:])
	}
	return synth.ToPlainText(answer), score, nil
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// selectWithinBudget greedily keeps the top-scoring answers until either
// MaxCommunityAnswers is reached or adding the next one would exceed
// ContextTokenLimit (approximated as ceil(chars/4)).
func (eng *Engine) selectWithinBudget(kept []CommunityAnswer) []CommunityAnswer {
	var out []CommunityAnswer
	tokens := 0
	for _, k := range kept {
		if len(out) >= eng.Config.MaxCommunityAnswers {
			break
		}
		cost := (len(k.Summary) + len(k.Answer) + 3) / 4
		if tokens+cost > eng.Config.ContextTokenLimit && len(out) > 0 {
			break
		}
		out = append(out, k)
		tokens += cost
	}
	return out
}

func (eng *Engine) reduce(ctx context.Context, query string, selected []CommunityAnswer) (string, error) {
	raw, err := eng.Generator.Generate(ctx, reducePrompt(query, selected, eng.Config.ResponseType))
	if err != nil {
		return "", err
	}
	return synth.ToPlainText(raw), nil
}

func reducePrompt(query string, selected []CommunityAnswer, responseType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Synthesize a %s answer to: %s\n\nCommunity reports:\n", responseType, query)
	for i, s := range selected {
		fmt.Fprintf(&b, "Report %d (score %d): %s\n", i+1, s.Score, s.Answer)
	}
	b.WriteString("\nCite report numbers supporting each claim.\n")
	return b.String()
}
