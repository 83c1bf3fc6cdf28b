package recommend

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/pkg/models"
)

// RepetitionFilter downweights papers that have been surfaced before. The
// penalty grows monotonically with the recommendation-history counter,
// penalty = downweight_factor × ln(1+count), and is applied by the fusion
// engine as a multiplicative discount on the fused score. A frequently shown
// paper sinks in the ranking but is never removed outright.
type RepetitionFilter struct {
	cfg    *config.RecommendationConfig
	logger *logrus.Logger
}

func NewRepetitionFilter(deps Dependencies) *RepetitionFilter {
	return &RepetitionFilter{cfg: deps.Config, logger: deps.Logger}
}

func (s *RepetitionFilter) Name() string       { return StrategyRepetitionFilter }
func (s *RepetitionFilter) Kind() StrategyKind { return KindFilter }

func (s *RepetitionFilter) Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error) {
	decisions := make([]models.FilterDecision, 0, len(pool))
	penalized := 0
	for _, cand := range pool {
		decision := models.FilterDecision{Ref: cand.Ref, Action: models.FilterKeep}
		if cand.TimesRecommended > 0 {
			decision.Action = models.FilterPenalize
			decision.Penalty = s.cfg.DownweightFactor * math.Log1p(float64(cand.TimesRecommended))
			penalized++
		}
		decisions = append(decisions, decision)
	}

	s.logger.WithFields(logrus.Fields{
		"strategy":   s.Name(),
		"candidates": len(pool),
		"penalized":  penalized,
		"factor":     s.cfg.DownweightFactor,
	}).Debug("Repetition downweighting applied")

	return &Outcome{Decisions: decisions}, nil
}
