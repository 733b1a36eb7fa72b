// Package llm defines the LLM and embedding collaborator interfaces the rest
// of the module is written against (spec's external-interfaces boundary),
// plus a real HTTP-backed adapter and a deterministic stub implementation.
//
// Both collaborators are treated as host-provided and out of this module's
// scope to specify beyond their consumed interface; callers (the pipeline,
// the summarizer, both query engines) depend only on Generator/Embedder.
package llm

import "context"

// Generator is the LLM collaborator. Each call is stateless: no caller may
// assume prior conversational state carries between calls. Implementations
// are not assumed to be safe for concurrent use — the pipeline and the
// global query engine's map phase serialize their own calls into a single
// Generator, never issuing two Generate calls at once.
type Generator interface {
	// Generate runs a single stateless completion over prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// StreamGenerator is the optional streaming variant of Generator. A token is
// a chunk of generated text, not necessarily a single model token.
type StreamGenerator interface {
	GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error)
}

// Embedder is the embedding collaborator. D (the returned vector's length)
// must not vary across calls for a given Embedder instance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is the optional batch variant of Embedder.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
