// Package pipeline orchestrates one search end to end: concurrent source
// fan-out, normalization, deduplication, batched scoring under the AI call
// budget, and deterministic ranking.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-finder/internal/dedupe"
	"github.com/jonathan/job-finder/internal/normalize"
	"github.com/jonathan/job-finder/internal/ratelimit"
	"github.com/jonathan/job-finder/internal/scoring"
	"github.com/jonathan/job-finder/internal/sources"
	"github.com/jonathan/job-finder/internal/types"
)

// Defaults for orchestration knobs.
const (
	DefaultSourceTimeout = 30 * time.Second
	DefaultGlobalTimeout = 90 * time.Second
	DefaultMaxBatchSize  = 10
	DefaultAIConcurrency = 3
)

// Options tunes one Orchestrator. Zero values fall back to the defaults.
type Options struct {
	SourceTimeout time.Duration
	GlobalTimeout time.Duration
	MaxBatchSize  int
	AIConcurrency int
	Logger        zerolog.Logger
}

func (o *Options) applyDefaults() {
	if o.SourceTimeout <= 0 {
		o.SourceTimeout = DefaultSourceTimeout
	}
	if o.GlobalTimeout <= 0 {
		o.GlobalTimeout = DefaultGlobalTimeout
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = DefaultMaxBatchSize
	}
	if o.AIConcurrency <= 0 {
		o.AIConcurrency = DefaultAIConcurrency
	}
}

// Orchestrator runs searches. It is stateless across requests apart from the
// shared AI call budget.
type Orchestrator struct {
	adapters []sources.Adapter
	ai       scoring.Strategy
	keyword  scoring.Strategy
	budget   *ratelimit.Budget
	opts     Options
	now      func() time.Time
}

// NewOrchestrator wires the pipeline. ai may be nil; every batch then scores
// with the keyword strategy.
func NewOrchestrator(adapters []sources.Adapter, ai scoring.Strategy, budget *ratelimit.Budget, opts Options) *Orchestrator {
	opts.applyDefaults()
	if budget == nil {
		budget = ratelimit.NewBudget(0, 0)
	}
	return &Orchestrator{
		adapters: adapters,
		ai:       ai,
		keyword:  scoring.NewKeyword(),
		budget:   budget,
		opts:     opts,
		now:      time.Now,
	}
}

// fetchOutcome holds one adapter's result, collected by index so the status
// order is stable.
type fetchOutcome struct {
	source  types.Source
	records []types.RawRecord
	err     error
}

// Search runs the full pipeline for one request. A failed source degrades the
// result; only all sources failing is an error. An empty result set is valid.
func (o *Orchestrator) Search(ctx context.Context, criteria types.SearchCriteria) (*types.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.GlobalTimeout)
	defer cancel()

	logger := o.opts.Logger
	start := o.now()

	logger.Info().Str("stage", "fetching").Str("position", criteria.Position).Int("sources", len(o.adapters)).Msg("search started")
	outcomes := o.fetchAll(ctx, criteria)

	logger.Info().Str("stage", "normalizing").Msg("normalizing records")
	postings, statuses, failed := o.normalizeAll(outcomes)

	if failed == len(o.adapters) {
		logger.Error().Str("stage", "fetching").Msg("all sources failed")
		return nil, &NoSourcesAvailableError{Statuses: statuses}
	}

	logger.Info().Str("stage", "deduplicating").Int("postings", len(postings)).Msg("deduplicating")
	postings = dedupe.Postings(postings)

	logger.Info().Str("stage", "scoring").Int("postings", len(postings)).Int("budget_remaining", o.budget.Remaining()).Msg("scoring batches")
	scored, fellBack := o.scoreAll(ctx, criteria, postings)

	logger.Info().Str("stage", "ranking").Msg("ranking results")
	types.SortScored(scored)
	if limit := criteria.EffectiveLimit(); len(scored) > limit {
		scored = scored[:limit]
	}

	sourceDegraded := false
	for _, s := range statuses {
		if s.Error != "" {
			sourceDegraded = true
			break
		}
	}

	result := &types.SearchResult{
		Jobs:     scored,
		Sources:  statuses,
		Degraded: sourceDegraded || (o.ai != nil && fellBack),
	}

	logger.Info().Str("stage", "done").
		Int("results", len(result.Jobs)).
		Bool("degraded", result.Degraded).
		Dur("elapsed", o.now().Sub(start)).
		Msg("search finished")
	return result, nil
}

// fetchAll fans out to every adapter under the per-source timeout. Adapter
// errors are captured, never propagated through the group.
func (o *Orchestrator) fetchAll(ctx context.Context, criteria types.SearchCriteria) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(o.adapters))

	var g errgroup.Group
	for i, adapter := range o.adapters {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, o.opts.SourceTimeout)
			defer cancel()

			records, err := adapter.Fetch(sctx, criteria)
			outcomes[i] = fetchOutcome{source: adapter.Source(), records: records, err: err}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines always return nil

	return outcomes
}

// normalizeAll converts raw records to postings per source and builds the
// per-source status report. A source that errored but still delivered records
// (a mid-fetch timeout) keeps them and is reported partial; failed counts
// only sources that delivered nothing.
func (o *Orchestrator) normalizeAll(outcomes []fetchOutcome) ([]types.Posting, []types.SourceStatus, int) {
	now := o.now()
	var all []types.Posting
	statuses := make([]types.SourceStatus, 0, len(outcomes))
	failed := 0

	for _, out := range outcomes {
		status := types.SourceStatus{Source: out.source}
		if out.err != nil {
			status.Error = out.err.Error()
			o.opts.Logger.Warn().Str("source", string(out.source)).Int("records", len(out.records)).Err(out.err).Msg("source failed")
		}
		if out.err != nil && len(out.records) == 0 {
			failed++
			status.State = types.SourceFailed
			statuses = append(statuses, status)
			continue
		}

		postings, dropped := normalize.Records(out.records, now)
		status.Records = len(postings)
		status.Dropped = dropped
		if out.err != nil || dropped > 0 {
			status.State = types.SourcePartial
		} else {
			status.State = types.SourceOK
		}
		all = append(all, postings...)
		statuses = append(statuses, status)
	}

	return all, statuses, failed
}

// scoreAll partitions postings into batches and scores each one. Batches run
// through the AI strategy while the budget allows and no AI failure has
// occurred; everything else uses the keyword strategy. Returns the scored
// postings and whether any batch fell back to keyword.
func (o *Orchestrator) scoreAll(ctx context.Context, criteria types.SearchCriteria, postings []types.Posting) ([]types.ScoredPosting, bool) {
	if len(postings) == 0 {
		return []types.ScoredPosting{}, false
	}

	batches := partition(postings, o.opts.MaxBatchSize)

	type batchScores struct {
		ai      map[string]float64 // nil when the batch scored via keyword
		keyword map[string]float64
	}
	results := make([]batchScores, len(batches))

	var aiFailed atomic.Bool
	fellBack := false

	var g errgroup.Group
	g.SetLimit(o.opts.AIConcurrency)
	for i, batch := range batches {
		useAI := o.ai != nil && !aiFailed.Load() && o.budget.Acquire()
		if !useAI {
			fellBack = fellBack || o.ai != nil
			scores, _ := o.keyword.Score(ctx, criteria, batch)
			results[i] = batchScores{keyword: scores}
			continue
		}

		g.Go(func() error {
			aiScores, err := o.ai.Score(ctx, criteria, batch)
			if err != nil {
				aiFailed.Store(true)
				o.opts.Logger.Warn().Err(err).Int("batch", i).Msg("AI scoring failed, falling back to keyword")
				scores, _ := o.keyword.Score(ctx, criteria, batch)
				results[i] = batchScores{keyword: scores}
				return nil
			}
			kwScores, _ := o.keyword.Score(ctx, criteria, batch)
			results[i] = batchScores{ai: aiScores, keyword: kwScores}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines always return nil

	if aiFailed.Load() {
		fellBack = true
	}

	scored := make([]types.ScoredPosting, 0, len(postings))
	for i, batch := range batches {
		res := results[i]
		for _, posting := range batch {
			if res.ai != nil {
				if score, ok := res.ai[posting.ID]; ok {
					scored = append(scored, types.ScoredPosting{Posting: posting, RelevanceScore: score, Strategy: types.StrategyAI})
					continue
				}
				// scored by the keyword fallback below
				fellBack = true
			}
			scored = append(scored, types.ScoredPosting{Posting: posting, RelevanceScore: res.keyword[posting.ID], Strategy: types.StrategyKeyword})
		}
	}
	return scored, fellBack
}

// partition splits postings into batches of at most size elements.
func partition(postings []types.Posting, size int) [][]types.Posting {
	var batches [][]types.Posting
	for start := 0; start < len(postings); start += size {
		end := start + size
		if end > len(postings) {
			end = len(postings)
		}
		batches = append(batches, postings[start:end])
	}
	return batches
}
