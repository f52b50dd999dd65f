package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"gemini_api_key": "test-key",
		"port": 9000,
		"max_batch_size": 5,
		"use_browser": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5, cfg.MaxBatchSize)
	assert.True(t, cfg.UseBrowser)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestFromEnv_FillsEmptyFields(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("SERPAPI_API_KEY", "env-serp")
	t.Setenv("APIFY_API_TOKEN", "env-apify")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SERVICE_URL", "https://jobs.example.com")
	t.Setenv("PORT", "7777")

	var cfg Config
	cfg.FromEnv()

	assert.Equal(t, "env-gemini", cfg.GeminiAPIKey)
	assert.Equal(t, "env-serp", cfg.SerpAPIKey)
	assert.Equal(t, "env-apify", cfg.ApifyAPIToken)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "https://jobs.example.com", cfg.ServiceURL)
	assert.Equal(t, 7777, cfg.Port)
}

func TestFromEnv_DoesNotOverrideExisting(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg := Config{GeminiAPIKey: "file-key"}
	cfg.FromEnv()

	assert.Equal(t, "file-key", cfg.GeminiAPIKey)
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BadPort(t *testing.T) {
	cfg := Config{Port: 99999}
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeLimits(t *testing.T) {
	cfg := Config{MaxBatchSize: -1}
	assert.Error(t, cfg.Validate())

	cfg = Config{AICallLimit: -1}
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000, GeminiAPIKey: "mine"}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9000, merged.Port, "explicit value kept")
	assert.Equal(t, "mine", merged.GeminiAPIKey)
	assert.Equal(t, 10, merged.MaxBatchSize, "default applied")
	assert.Equal(t, 15, merged.AICallLimit)
	assert.Equal(t, 3, merged.AIConcurrency)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 30*time.Second, cfg.SourceTimeoutDuration())
	assert.Equal(t, 90*time.Second, cfg.GlobalTimeoutDuration())
	assert.Equal(t, time.Minute, cfg.AIWindow())
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL())
}
