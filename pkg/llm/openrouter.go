package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Provider names the remote completion API an OpenRouterClient talks to.
// Named after the teacher's batch.Provider even though only OpenRouter's
// request shape is modeled here: a second provider is a matter of adding
// another branch the way the teacher's batch.Service dispatches on Provider.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
)

// Config holds the settings for an OpenRouterClient, mirroring the shape of
// the teacher's batch.Config (provider + API key + model) without the
// WASM-only Google branch, since this module targets a regular Go binary.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string // defaults to https://openrouter.ai/api/v1/chat/completions
}

// OpenRouterClient implements Generator over OpenRouter's chat-completions
// endpoint via net/http, replacing the teacher's syscall/js browser-fetch
// transport (this module is not a WASM binary) while keeping the same
// request/response JSON shapes the teacher's openrouter.go defines.
type OpenRouterClient struct {
	config Config
	http   *http.Client
}

// NewOpenRouterClient builds a client from cfg, defaulting BaseURL and the
// HTTP client's timeout if unset.
func NewOpenRouterClient(cfg Config) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return &OpenRouterClient{
		config: cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// IsConfigured reports whether the client has a usable API key.
func (c *OpenRouterClient) IsConfigured() bool {
	return c.config.APIKey != ""
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Stream      bool                `json:"stream"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Generate issues a single stateless completion request. Always sends
// Stream: false, matching spec's blocking-call contract for the pipeline's
// task.
func (c *OpenRouterClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("llm: openrouter client not configured")
	}

	reqBody := openRouterRequest{
		Model: c.config.Model,
		Messages: []openRouterMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   4096,
		Stream:      false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal openrouter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build openrouter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: openrouter request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed openRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: parse openrouter response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm: openrouter API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response from openrouter")
	}
	text := parsed.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("llm: empty content in openrouter response")
	}
	return text, nil
}
