// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the runtime configuration. All fields are optional; missing
// values use defaults or come from CLI flags and environment variables.
type Config struct {
	// Credentials
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`  // Gemini API key for AI scoring
	SerpAPIKey    string `json:"serpapi_api_key,omitempty"` // SerpApi key for Google Jobs
	ApifyAPIToken string `json:"apify_api_token,omitempty"` // Apify token for Indeed

	// Infrastructure
	RedisURL   string `json:"redis_url,omitempty"`   // Optional raw-response cache
	Port       int    `json:"port,omitempty"`        // HTTP listen port
	ServiceURL string `json:"service_url,omitempty"` // Public URL for the keep-alive self-ping

	// Pipeline limits
	MaxBatchSize  int     `json:"max_batch_size,omitempty"`    // Postings per AI scoring call
	AICallLimit   int     `json:"ai_call_limit,omitempty"`     // AI calls per rate window
	AIWindowSecs  int     `json:"ai_window_seconds,omitempty"` // Rate window length
	AIConcurrency int     `json:"ai_concurrency,omitempty"`    // Concurrent AI scoring calls
	SourceTimeout float64 `json:"source_timeout_seconds,omitempty"`
	GlobalTimeout float64 `json:"global_timeout_seconds,omitempty"`
	CacheTTLMins  int     `json:"cache_ttl_minutes,omitempty"`
	KeepAliveMins int     `json:"keep_alive_minutes,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Headless browser for JS-rendered pages
	Verbose    bool `json:"verbose,omitempty"`     // Debug-level logging
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Port:          8000,
		MaxBatchSize:  10,
		AICallLimit:   15,
		AIWindowSecs:  60,
		AIConcurrency: 3,
		SourceTimeout: 30,
		GlobalTimeout: 90,
		CacheTTLMins:  15,
		KeepAliveMins: 10,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills credential and infrastructure fields from the environment.
// Environment values never override values already set.
func (c *Config) FromEnv() {
	setIfEmpty := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setIfEmpty(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setIfEmpty(&c.SerpAPIKey, "SERPAPI_API_KEY")
	setIfEmpty(&c.ApifyAPIToken, "APIFY_API_TOKEN")
	setIfEmpty(&c.RedisURL, "REDIS_URL")
	setIfEmpty(&c.ServiceURL, "SERVICE_URL")

	if c.Port == 0 {
		if port := os.Getenv("PORT"); port != "" {
			fmt.Sscanf(port, "%d", &c.Port) //nolint:errcheck // bad value keeps the default
		}
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("config error: 'max_batch_size' must be non-negative")
	}
	if c.AICallLimit < 0 {
		return fmt.Errorf("config error: 'ai_call_limit' must be non-negative")
	}
	if c.AIWindowSecs < 0 {
		return fmt.Errorf("config error: 'ai_window_seconds' must be non-negative")
	}
	if c.AIConcurrency < 0 {
		return fmt.Errorf("config error: 'ai_concurrency' must be non-negative")
	}
	if c.SourceTimeout < 0 || c.GlobalTimeout < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-value fields filled from
// defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.SerpAPIKey == "" {
		result.SerpAPIKey = defaults.SerpAPIKey
	}
	if result.ApifyAPIToken == "" {
		result.ApifyAPIToken = defaults.ApifyAPIToken
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.ServiceURL == "" {
		result.ServiceURL = defaults.ServiceURL
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxBatchSize == 0 {
		result.MaxBatchSize = defaults.MaxBatchSize
	}
	if result.AICallLimit == 0 {
		result.AICallLimit = defaults.AICallLimit
	}
	if result.AIWindowSecs == 0 {
		result.AIWindowSecs = defaults.AIWindowSecs
	}
	if result.AIConcurrency == 0 {
		result.AIConcurrency = defaults.AIConcurrency
	}
	if result.SourceTimeout == 0 {
		result.SourceTimeout = defaults.SourceTimeout
	}
	if result.GlobalTimeout == 0 {
		result.GlobalTimeout = defaults.GlobalTimeout
	}
	if result.CacheTTLMins == 0 {
		result.CacheTTLMins = defaults.CacheTTLMins
	}
	if result.KeepAliveMins == 0 {
		result.KeepAliveMins = defaults.KeepAliveMins
	}

	return result
}

// SourceTimeoutDuration returns the per-source fetch timeout.
func (c *Config) SourceTimeoutDuration() time.Duration {
	return time.Duration(c.SourceTimeout * float64(time.Second))
}

// GlobalTimeoutDuration returns the whole-request deadline.
func (c *Config) GlobalTimeoutDuration() time.Duration {
	return time.Duration(c.GlobalTimeout * float64(time.Second))
}

// AIWindow returns the rate-limit window length.
func (c *Config) AIWindow() time.Duration {
	return time.Duration(c.AIWindowSecs) * time.Second
}

// CacheTTL returns the raw-response cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMins) * time.Minute
}
