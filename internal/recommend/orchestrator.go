package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/internal/metrics"
	"github.com/mistward/paperfuse/pkg/models"
)

// Orchestrator wires registry → strategies → filters → fusion into one pass.
// It owns nothing between calls: every invocation receives its own candidate
// pool and profile snapshot and returns a fresh FusedResult, so concurrent
// passes share no mutable state.
type Orchestrator struct {
	cfg     *config.RecommendationConfig
	scoring []Strategy
	filters []Strategy
	fusion  *FusionEngine
	logger  *logrus.Logger
	metrics *metrics.Recorder
}

// strategyResult is one fan-out slot: what a single strategy produced, how
// long it took, and whether it failed. Failures stay in the record and
// never cross the goroutine boundary as anything but a value.
type strategyResult struct {
	name    string
	kind    StrategyKind
	outcome *Outcome
	latency time.Duration
	err     error
}

// NewOrchestrator validates the configuration, resolves the enabled strategy
// set and builds the fusion engine. Configuration problems surface here,
// before any pass can run.
func NewOrchestrator(cfg *config.RecommendationConfig, registry *Registry, embedder EmbeddingProvider, logger *logrus.Logger, recorder *metrics.Recorder) (*Orchestrator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	set, err := registry.Resolve(cfg.EnabledStrategies, Dependencies{
		Config:   cfg,
		Embedder: embedder,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:     cfg,
		scoring: set.Scoring,
		filters: set.Filters,
		fusion:  NewFusionEngine(cfg.RRFK),
		logger:  logger,
		metrics: recorder,
	}, nil
}

func validateConfig(cfg *config.RecommendationConfig) error {
	if cfg == nil {
		return configError("recommend", "configuration must not be nil")
	}
	if len(cfg.EnabledStrategies) == 0 {
		return configError("enabled_strategies", "must name at least one strategy")
	}
	if cfg.TopK <= 0 {
		return configError("top_k", "must be greater than zero, got %d", cfg.TopK)
	}
	if cfg.MinSimilarity < 0 || cfg.MinSimilarity > 1 {
		return configError("min_similarity", "must be within [0, 1], got %g", cfg.MinSimilarity)
	}
	if cfg.RRFK <= 0 {
		return configError("rrf_k", "must be greater than zero, got %d", cfg.RRFK)
	}
	if cfg.DisinterestThreshold < 0 || cfg.DisinterestThreshold > 1 {
		return configError("disinterest_threshold", "must be within [0, 1], got %g", cfg.DisinterestThreshold)
	}
	if cfg.DownweightFactor < 0 {
		return configError("downweight_factor", "must not be negative, got %g", cfg.DownweightFactor)
	}
	if cfg.ScoringOverfetch < 1 {
		return configError("scoring_overfetch", "must be at least 1, got %d", cfg.ScoringOverfetch)
	}
	return nil
}

// Recommend runs one fusion pass over the candidate pool. An empty pool is
// an expected steady state and returns an empty result with a nil error;
// per-strategy failures degrade that strategy's contribution and the pass
// continues. Only configuration problems are returned as errors.
func (o *Orchestrator) Recommend(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*models.FusedResult, error) {
	start := time.Now()

	if err := validateConfig(o.cfg); err != nil {
		return nil, err
	}

	result := &models.FusedResult{
		PassID:      uuid.New(),
		Items:       []models.FusedItem{},
		GeneratedAt: time.Now().UTC(),
	}

	passLog := o.logger.WithField("pass_id", result.PassID)

	if len(pool) == 0 {
		passLog.Info("Empty candidate pool, returning empty recommendation set")
		o.metrics.ObservePass(time.Since(start), 0)
		return result, nil
	}

	if profile == nil {
		profile = &models.UserProfile{}
	}

	passLog.WithFields(logrus.Fields{
		"candidates": len(pool),
		"scoring":    len(o.scoring),
		"filters":    len(o.filters),
	}).Info("Starting recommendation pass")

	scored := o.executeScoringParallel(ctx, pool, profile)
	rankings, degraded := o.collectRankings(passLog, scored)

	decisions, filterDegraded := o.runFilters(ctx, passLog, pool, profile)
	degraded = append(degraded, filterDegraded...)

	items := o.fusion.Fuse(rankings, decisions, o.cfg.TopK)
	hydrate(items, pool)

	result.Items = items
	result.Degraded = degraded

	latency := time.Since(start)
	o.metrics.ObservePass(latency, len(items))

	passLog.WithFields(logrus.Fields{
		"items":    len(items),
		"degraded": len(degraded),
		"latency":  latency,
	}).Info("Recommendation pass complete")

	return result, nil
}

// executeScoringParallel fans the scoring strategies out, one goroutine per
// strategy, and joins before anything downstream looks at the results. Each
// goroutine writes only its own slot, so no locking is needed.
func (o *Orchestrator) executeScoringParallel(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) []strategyResult {
	results := make([]strategyResult, len(o.scoring))

	var wg sync.WaitGroup
	for i, strategy := range o.scoring {
		wg.Add(1)
		go func(slot int, s Strategy) {
			defer wg.Done()

			sctx, cancel := o.strategyContext(ctx)
			defer cancel()

			strategyStart := time.Now()
			outcome, err := s.Compute(sctx, pool, profile)
			results[slot] = strategyResult{
				name:    s.Name(),
				kind:    s.Kind(),
				outcome: outcome,
				latency: time.Since(strategyStart),
				err:     err,
			}
		}(i, strategy)
	}
	wg.Wait()

	return results
}

// collectRankings folds the fan-out results into usable rankings, dropping
// failed or empty contributions and recording the degradation. Rankings are
// capped at top_k × scoring_overfetch entries before fusion.
func (o *Orchestrator) collectRankings(passLog *logrus.Entry, results []strategyResult) ([]models.StrategyRanking, []string) {
	limit := o.cfg.TopK * o.cfg.ScoringOverfetch

	rankings := make([]models.StrategyRanking, 0, len(results))
	var degraded []string

	for _, r := range results {
		o.metrics.ObserveStrategy(r.name, r.latency)

		switch {
		case r.err != nil:
			passLog.WithError(r.err).WithField("strategy", r.name).
				Warn("Strategy failed, continuing without its contribution")
			o.metrics.ObserveDegradation(r.name, "error")
			degraded = append(degraded, r.name)

		case r.outcome == nil || r.outcome.Ranking == nil || len(r.outcome.Ranking.Entries) == 0:
			passLog.WithField("strategy", r.name).
				Info("Strategy returned no ranking, continuing without its contribution")
			o.metrics.ObserveDegradation(r.name, "empty_ranking")
			degraded = append(degraded, r.name)

		default:
			ranking := *r.outcome.Ranking
			if len(ranking.Entries) > limit {
				ranking.Entries = ranking.Entries[:limit]
			}
			rankings = append(rankings, ranking)
		}
	}

	return rankings, degraded
}

// runFilters applies the filter strategies sequentially in enabled-list
// order. A failing filter degrades like a failing scorer: its decisions are
// skipped and the pass moves on.
func (o *Orchestrator) runFilters(ctx context.Context, passLog *logrus.Entry, pool []models.Candidate, profile *models.UserProfile) ([]models.FilterDecision, []string) {
	var decisions []models.FilterDecision
	var degraded []string

	for _, filter := range o.filters {
		fctx, cancel := o.strategyContext(ctx)

		filterStart := time.Now()
		outcome, err := filter.Compute(fctx, pool, profile)
		cancel()
		o.metrics.ObserveStrategy(filter.Name(), time.Since(filterStart))

		if err != nil {
			passLog.WithError(err).WithField("strategy", filter.Name()).
				Warn("Filter failed, continuing without its decisions")
			o.metrics.ObserveDegradation(filter.Name(), "error")
			degraded = append(degraded, filter.Name())
			continue
		}
		if outcome == nil || len(outcome.Decisions) == 0 {
			continue
		}

		excluded := 0
		for _, d := range outcome.Decisions {
			if d.Action == models.FilterExclude {
				excluded++
			}
		}
		o.metrics.ObserveExclusions(filter.Name(), excluded)

		decisions = append(decisions, outcome.Decisions...)
	}

	return decisions, degraded
}

// strategyContext derives the per-strategy deadline when one is configured.
func (o *Orchestrator) strategyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.StrategyTimeout > 0 {
		return context.WithTimeout(ctx, o.cfg.StrategyTimeout)
	}
	return ctx, func() {}
}

// hydrate attaches the full candidate to each fused item so callers can
// render titles without a second lookup.
func hydrate(items []models.FusedItem, pool []models.Candidate) {
	byRef := make(map[models.PaperRef]*models.Candidate, len(pool))
	for i := range pool {
		byRef[pool[i].Ref] = &pool[i]
	}
	for i := range items {
		if cand, ok := byRef[items[i].Ref]; ok {
			items[i].Candidate = cand
		}
	}
}
