// Package llm provides the generation provider abstraction used by the
// entry pipeline. A provider exposes one-shot generation, fragment streaming
// and a health probe; concrete backends are added behind the same interface.
package llm

// Provider identifies an LLM backend.
type Provider string

// Supported providers. Only Gemini has a concrete implementation today;
// the constants keep a second backend an additive change.
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider (future)
	ProviderAnthropic Provider = "anthropic"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// maxOutputTokens bounds every generation call.
const maxOutputTokens = 4096

// Config holds the provider configuration for the application.
type Config struct {
	Provider Provider
	Model    string
}

// DefaultConfig returns the default configuration (currently Gemini).
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultModel,
	}
}

// WithModel returns a copy of the config with a specific model.
func (c *Config) WithModel(model string) *Config {
	return &Config{
		Provider: c.Provider,
		Model:    model,
	}
}
