// Package summarize produces LLM-authored community summaries and their
// embeddings, processed strictly from the deepest detected level down to
// level 0 so that parent-level prompts can cite their children's summaries,
// grounded on the teacher's pkg/scanner/narrative package's "group then
// describe" shape (narrative.go groups related content before handing it to
// an LLM call) adapted to communities instead of narrative threads.
package summarize

// Config tunes prompt construction.
type Config struct {
	// MaxEntitiesPerPrompt bounds how many member entities are named in a
	// leaf-level prompt, to keep the prompt within a reasonable size for
	// large communities.
	MaxEntitiesPerPrompt int
	// MaxTriplesPerPrompt bounds how many relationship triples are listed.
	MaxTriplesPerPrompt int
}

// DefaultConfig returns sane defaults; spec does not name specific prompt
// size limits for the summarizer, so these follow the extractor's own
// MaxTextLength-style bounding in spirit.
func DefaultConfig() Config {
	return Config{
		MaxEntitiesPerPrompt: 40,
		MaxTriplesPerPrompt:  60,
	}
}
