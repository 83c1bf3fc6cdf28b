package recommend

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/pkg/models"
)

// LLMThemes scores candidates by their maximum similarity to any interest
// theme on the profile. Themes are derived upstream from liked papers; a
// profile without themes yields an empty ranking, not an error.
type LLMThemes struct {
	logger *logrus.Logger
}

func NewLLMThemes(deps Dependencies) *LLMThemes {
	return &LLMThemes{logger: deps.Logger}
}

func (s *LLMThemes) Name() string       { return StrategyLLMThemes }
func (s *LLMThemes) Kind() StrategyKind { return KindScoring }

func (s *LLMThemes) Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error) {
	refs := make([][]float32, 0, len(profile.Themes))
	for _, theme := range profile.Themes {
		if len(theme.Embedding) > 0 {
			refs = append(refs, theme.Embedding)
		}
	}
	if len(refs) == 0 {
		s.logger.Debug("No interest themes with embeddings, llm_themes returns empty ranking")
		return &Outcome{Ranking: &models.StrategyRanking{Strategy: s.Name()}}, nil
	}

	entries := make([]models.ScoredPaper, 0, len(pool))
	for _, cand := range pool {
		if len(cand.Embedding) == 0 {
			continue
		}
		best, ok := maxSimilarity(cand.Embedding, refs)
		if !ok {
			continue
		}
		entries = append(entries, models.ScoredPaper{Ref: cand.Ref, Score: best})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	s.logger.WithFields(logrus.Fields{
		"strategy":   s.Name(),
		"candidates": len(pool),
		"ranked":     len(entries),
		"themes":     len(refs),
	}).Debug("Theme ranking computed")

	return &Outcome{Ranking: &models.StrategyRanking{Strategy: s.Name(), Entries: entries}}, nil
}
