package llm

import (
	"context"
	"fmt"
	"io"
)

// Usage reports token consumption for a one-shot call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Result is the unified response format for a one-shot generation call.
type Result struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Usage        *Usage `json:"usage,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Stream is a finite, non-restartable sequence of text fragments in arrival
// order. Next returns io.EOF when the provider signals completion and a
// *ProviderError on transport failure; no fragments follow an error.
// Cancellation is cooperative: stop calling Next.
type Stream interface {
	Next() (string, error)
}

// Client is an abstraction over LLM providers.
type Client interface {
	// Generate waits for the full response to the prompt.
	Generate(ctx context.Context, prompt, systemPrompt string) (*Result, error)
	// GenerateStream produces the response as a lazy sequence of fragments.
	GenerateStream(ctx context.Context, prompt, systemPrompt string) (Stream, error)
	// HealthCheck issues a minimal probe. It never fails; any provider
	// error is swallowed and reported as false.
	HealthCheck(ctx context.Context) bool
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a new LLM client based on configuration.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	// case ProviderAnthropic:
	//     return NewClaudeClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}

// Drain consumes a stream to completion, invoking onFragment for every
// fragment, and returns the concatenated text. It stops early when ctx is
// cancelled so no further provider work is pulled.
func Drain(ctx context.Context, s Stream, onFragment func(string)) (string, error) {
	var buf []byte
	for {
		if err := ctx.Err(); err != nil {
			return string(buf), err
		}
		fragment, err := s.Next()
		if err == io.EOF {
			return string(buf), nil
		}
		if err != nil {
			return string(buf), err
		}
		buf = append(buf, fragment...)
		if onFragment != nil {
			onFragment(fragment)
		}
	}
}
