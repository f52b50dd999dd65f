package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/jonathan/job-finder/internal/config"
	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/pipeline"
	"github.com/jonathan/job-finder/internal/ratelimit"
	"github.com/jonathan/job-finder/internal/scoring"
	"github.com/jonathan/job-finder/internal/sources"
)

// maxJobsPerSource bounds how many postings each adapter collects per search.
const maxJobsPerSource = 20

// newLogger builds the console logger shared by all commands.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// buildOrchestrator wires adapters, scoring and the rate budget from config.
// The returned cleanup releases the Gemini client when one was created.
func buildOrchestrator(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*pipeline.Orchestrator, func(), error) {
	adapters := []sources.Adapter{
		sources.NewLinkedIn(maxJobsPerSource, cfg.UseBrowser, logger),
	}
	if cfg.SerpAPIKey != "" {
		adapters = append(adapters, sources.NewGoogleJobs(cfg.SerpAPIKey, maxJobsPerSource, logger))
	} else {
		logger.Warn().Msg("SERPAPI_API_KEY not set, Google Jobs source disabled")
	}
	if cfg.ApifyAPIToken != "" {
		adapters = append(adapters, sources.NewIndeed(cfg.ApifyAPIToken, "US", maxJobsPerSource, logger))
	} else {
		logger.Warn().Msg("APIFY_API_TOKEN not set, Indeed source disabled")
	}

	if cfg.RedisURL != "" {
		rdb, err := sources.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		} else {
			for i, adapter := range adapters {
				adapters[i] = sources.NewCached(adapter, rdb, cfg.CacheTTL(), logger)
			}
		}
	}

	cleanup := func() {}
	var ai scoring.Strategy
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		ai = scoring.NewAI(client)
		cleanup = func() { client.Close() } //nolint:errcheck // best-effort release
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, scoring with keyword strategy only")
	}

	budget := ratelimit.NewBudget(cfg.AICallLimit, cfg.AIWindow())

	orchestrator := pipeline.NewOrchestrator(adapters, ai, budget, pipeline.Options{
		SourceTimeout: cfg.SourceTimeoutDuration(),
		GlobalTimeout: cfg.GlobalTimeoutDuration(),
		MaxBatchSize:  cfg.MaxBatchSize,
		AIConcurrency: cfg.AIConcurrency,
		Logger:        logger,
	})
	return orchestrator, cleanup, nil
}

// loadConfig merges file, environment and defaults in that priority order.
func loadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
