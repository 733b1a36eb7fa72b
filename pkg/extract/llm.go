package extract

import (
	"context"
	"fmt"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
)

// LLMExtract runs the free-text extraction path: build a prompt, call the
// generator once (stateless), parse the response with the layered
// robustness rules in parser.go. Used directly for free text and as a
// fallback when a direct extractor has nothing to dispatch on.
func LLMExtract(ctx context.Context, gen llm.Generator, text, sourceID string, family graphtypes.DataFamily) (Result, error) {
	return LLMExtractWithHints(ctx, gen, text, sourceID, family, nil)
}

// LLMExtractWithHints is LLMExtract with a KnownEntities dictionary
// consulted to steer the model toward reusing names already in the graph.
// A nil known behaves exactly like LLMExtract.
func LLMExtractWithHints(ctx context.Context, gen llm.Generator, text, sourceID string, family graphtypes.DataFamily, known *KnownEntities) (Result, error) {
	prompt := BuildPromptWithHints(text, known)
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("extract: llm generate: %w", err)
	}
	ents, rels, err := ParseLLMResponse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("extract: parse llm response: %w", err)
	}
	return Result{
		Entities:      ents,
		Relationships: rels,
		SourceID:      sourceID,
		SourceType:    family,
	}, nil
}
