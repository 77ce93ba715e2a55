package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule is the rate limit for one endpoint. A trailing slash in Path makes
// it a prefix match.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Exempt          map[string]bool
	Rules           []Rule
}

// LoadConfig reads rate limiting configuration from the environment.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Exempt:          parseIPList(os.Getenv("RATE_LIMIT_EXEMPT")),
		Rules:           DefaultRules(),
	}
}

// DefaultRules limits the generation endpoints, which each cost several
// LLM calls, far below the default read limit.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/generate/", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
	}
}

// match finds the rule covering a path and method. The health check is
// never limited.
func (c *Config) match(path, method string) *Rule {
	if path == "/health" && method == "GET" {
		return nil
	}

	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}

	if c.DefaultLimit > 0 {
		return &Rule{
			Path:   "",
			Method: method,
			Limit:  c.DefaultLimit,
			Window: c.DefaultWindow,
			Burst:  c.DefaultLimit,
		}
	}
	return nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
