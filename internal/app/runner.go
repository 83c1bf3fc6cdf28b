package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/messaging"
	"github.com/mistward/paperfuse/internal/recommend"
	"github.com/mistward/paperfuse/pkg/models"
)

// Runner executes fusion passes end to end: fetch pool and profile, run the
// engine, then apply the requested side effects. Any collaborator failure
// aborts the pass; in daemon mode the scheduler just waits for the next tick.
type Runner struct {
	logger       *logrus.Logger
	orchestrator *recommend.Orchestrator
	candidates   CandidateStore
	profiles     ProfileStore
	publisher    *messaging.Publisher
	strategies   []string

	// mark gates both side effects: surfacing counters and the Kafka event.
	// A run without it is a dry run.
	mark bool
}

func (r *Runner) RunPass(ctx context.Context) (*models.FusedResult, error) {
	pool, err := r.candidates.FetchCandidatePool(ctx, models.FetchCriteria{})
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	profile, err := r.profiles.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	result, err := r.orchestrator.Recommend(ctx, pool, profile)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	if len(result.Items) == 0 {
		r.logger.WithField("pass_id", result.PassID).Info("No recommendations this pass")
		return result, nil
	}

	if r.mark {
		refs := make([]models.PaperRef, 0, len(result.Items))
		for _, item := range result.Items {
			refs = append(refs, item.Ref)
		}
		if err := r.candidates.MarkRecommended(ctx, refs); err != nil {
			return nil, fmt.Errorf("mark recommended: %w", err)
		}

		if err := r.publisher.PublishRecommendations(ctx, result, r.strategies); err != nil {
			return nil, fmt.Errorf("publish recommendations: %w", err)
		}
	}

	return result, nil
}
