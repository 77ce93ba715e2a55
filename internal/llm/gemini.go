package llm

import (
	"context"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &ProviderError{Provider: ProviderGemini, Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &ProviderError{
			Provider: ProviderGemini,
			Message:  "failed to create client",
			Cause:    err,
		}
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// model builds a generative model configured for the given system prompt.
func (c *GeminiClient) model(systemPrompt string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.config.Model)
	model.SetMaxOutputTokens(maxOutputTokens)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return model
}

// Generate waits for the full response to the prompt.
func (c *GeminiClient) Generate(ctx context.Context, prompt, systemPrompt string) (*Result, error) {
	resp, err := c.model(systemPrompt).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &ProviderError{
			Provider: ProviderGemini,
			Message:  "generation failed",
			Cause:    err,
		}
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Content: text,
		Model:   c.config.Model,
	}
	if resp.UsageMetadata != nil {
		result.Usage = &Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if len(resp.Candidates) > 0 {
		result.FinishReason = resp.Candidates[0].FinishReason.String()
	}
	return result, nil
}

// GenerateStream produces the response as a lazy sequence of text fragments.
func (c *GeminiClient) GenerateStream(ctx context.Context, prompt, systemPrompt string) (Stream, error) {
	iter := c.model(systemPrompt).GenerateContentStream(ctx, genai.Text(prompt))
	return &geminiStream{iter: iter}, nil
}

// HealthCheck issues a minimal 10-token probe and reports whether it
// succeeded. All provider failures are swallowed.
func (c *GeminiClient) HealthCheck(ctx context.Context) bool {
	model := c.client.GenerativeModel(c.config.Model)
	model.SetMaxOutputTokens(10)
	_, err := model.GenerateContent(ctx, genai.Text("hi"))
	return err == nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// geminiStream adapts the genai response iterator to the Stream interface.
// A transport failure terminates the stream; no fragments follow it.
type geminiStream struct {
	iter   *genai.GenerateContentResponseIterator
	failed bool
}

func (s *geminiStream) Next() (string, error) {
	if s.failed {
		return "", io.EOF
	}
	for {
		resp, err := s.iter.Next()
		if err == iterator.Done {
			return "", io.EOF
		}
		if err != nil {
			s.failed = true
			return "", &ProviderError{
				Provider: ProviderGemini,
				Message:  "stream interrupted",
				Cause:    err,
			}
		}
		// Trailing responses may carry only usage metadata; skip them.
		if text := candidateText(resp); text != "" {
			return text, nil
		}
	}
}

// extractText pulls the text parts out of a one-shot response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &ProviderError{Provider: ProviderGemini, Message: "no candidates in response"}
	}

	text := candidateText(resp)
	if text == "" {
		return "", &ProviderError{Provider: ProviderGemini, Message: "no text parts in response"}
	}
	return text, nil
}

// candidateText joins the text parts of the first candidate, or "".
func candidateText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}
