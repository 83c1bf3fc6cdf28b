package recommend

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/pkg/models"
)

// DisinterestedSemantic excludes candidates that sit too close to papers the
// user marked disinterested: maximum similarity above the configured
// threshold means exclude, anything else means keep. The inverse of
// InterestedSemantic, except it only ever removes; low similarity to
// disliked papers is never a boost.
type DisinterestedSemantic struct {
	cfg    *config.RecommendationConfig
	logger *logrus.Logger
}

func NewDisinterestedSemantic(deps Dependencies) *DisinterestedSemantic {
	return &DisinterestedSemantic{cfg: deps.Config, logger: deps.Logger}
}

func (s *DisinterestedSemantic) Name() string       { return StrategyDisinterestedSemantic }
func (s *DisinterestedSemantic) Kind() StrategyKind { return KindFilter }

func (s *DisinterestedSemantic) Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error) {
	refs := feedbackEmbeddings(profile.DislikedPapers)

	decisions := make([]models.FilterDecision, 0, len(pool))
	excluded := 0
	for _, cand := range pool {
		decision := models.FilterDecision{Ref: cand.Ref, Action: models.FilterKeep}
		if len(refs) > 0 && len(cand.Embedding) > 0 {
			if best, ok := maxSimilarity(cand.Embedding, refs); ok && best > s.cfg.DisinterestThreshold {
				decision.Action = models.FilterExclude
				excluded++
			}
		}
		decisions = append(decisions, decision)
	}

	s.logger.WithFields(logrus.Fields{
		"strategy":        s.Name(),
		"candidates":      len(pool),
		"excluded":        excluded,
		"disliked_papers": len(refs),
		"threshold":       s.cfg.DisinterestThreshold,
	}).Debug("Disinterest semantic filter applied")

	return &Outcome{Decisions: decisions}, nil
}
