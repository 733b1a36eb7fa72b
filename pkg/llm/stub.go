package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"strings"
)

// Stub is a deterministic Generator/Embedder/StreamGenerator used by tests
// and the CLI demo when no real provider is configured. It never makes a
// network call: Embed derives a fixed-width vector from the input text's
// hash, and Generate produces a short templated completion that still
// exercises downstream JSON-repair parsing when asked to extract entities.
type Stub struct {
	Dim int // embedding width; defaults to 8 if zero
}

// NewStub returns a Stub with the given embedding dimension, or 8 if dim<=0.
func NewStub(dim int) *Stub {
	if dim <= 0 {
		dim = 8
	}
	return &Stub{Dim: dim}
}

// Generate returns a deterministic, content-derived completion. Callers that
// expect JSON (the extractor, the summarizer) get a minimal valid document
// back rather than prose, so the stub is usable end to end without a real
// model.
func (s *Stub) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	if strings.Contains(prompt, "\"entities\"") || strings.Contains(prompt, "extract") {
		return `{"entities":[],"relations":[]}`, nil
	}
	return fmt.Sprintf("Summary of %d characters of input.", len(prompt)), nil
}

// GenerateStream chunks Generate's output into single-word tokens so callers
// exercising the streaming path see more than one send on the channel.
func (s *Stub) GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(tokens)
		defer close(errs)
		text, err := s.Generate(ctx, prompt)
		if err != nil {
			errs <- err
			return
		}
		for _, word := range strings.Fields(text) {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case tokens <- word + " ":
			}
		}
	}()
	return tokens, errs
}

// Embed derives a deterministic unit vector from text's SHA-256 digest, so
// identical text always embeds to the same point and the embedding space is
// stable across process restarts without any model weights.
func (s *Stub) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	sum := sha256.Sum256([]byte(text))
	out := make([]float32, s.Dim)
	var normSq float64
	for i := range out {
		b := sum[i%len(sum)]
		v := float32(b)/127.5 - 1
		out[i] = v
		normSq += float64(v) * float64(v)
	}
	if normSq > 0 {
		inv := float32(1 / math.Sqrt(normSq))
		for i := range out {
			out[i] *= inv
		}
	}
	return out, nil
}

// EmbedBatch embeds each text independently via Embed.
func (s *Stub) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
