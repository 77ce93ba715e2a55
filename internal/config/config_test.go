package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFullEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/knowlog")
	t.Setenv("ADMIN_API_KEY", "admin-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_MODEL", "gemini-2.5-pro")
	t.Setenv("USE_BROWSER", "true")
}

func TestFromEnv(t *testing.T) {
	setFullEnv(t)

	cfg := FromEnv()
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "postgres://localhost/knowlog", cfg.DatabaseURL)
	assert.Equal(t, "admin-secret", cfg.AdminAPIKey)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.True(t, cfg.UseBrowser)
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("USE_BROWSER", "")

	cfg := FromEnv()
	assert.Equal(t, "8000", cfg.Port)
	assert.False(t, cfg.UseBrowser)
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"missing admin key", func(c *Config) { c.AdminAPIKey = "" }, "ADMIN_API_KEY"},
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				GeminiAPIKey: "k",
				DatabaseURL:  "postgres://localhost/knowlog",
				AdminAPIKey:  "a",
				Port:         "8000",
			}
			tt.mutate(cfg)

			err := cfg.ValidateServer()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
