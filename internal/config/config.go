// Package config provides environment-based configuration for the server
// and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds runtime settings read from the environment. A .env file, if
// present, is loaded by the command entrypoint before FromEnv runs.
type Config struct {
	// GeminiAPIKey authenticates against the generation provider.
	GeminiAPIKey string
	// Model overrides the default generation model when set.
	Model string
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string
	// AdminAPIKey protects the generation endpoints.
	AdminAPIKey string
	// Port is the HTTP listen port.
	Port string
	// UseBrowser enables the headless-browser fallback for pages that
	// render their content client side.
	UseBrowser bool
}

// FromEnv reads configuration from environment variables.
func FromEnv() *Config {
	useBrowser, _ := strconv.ParseBool(os.Getenv("USE_BROWSER"))

	return &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Model:        os.Getenv("LLM_MODEL"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		AdminAPIKey:  os.Getenv("ADMIN_API_KEY"),
		Port:         envOrDefault("PORT", "8000"),
		UseBrowser:   useBrowser,
	}
}

// Validate checks the settings every mode needs.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	return nil
}

// ValidateServer checks the settings the HTTP server needs on top of
// Validate.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.AdminAPIKey == "" {
		return fmt.Errorf("config error: ADMIN_API_KEY is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config error: PORT must be numeric, got %q", c.Port)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
