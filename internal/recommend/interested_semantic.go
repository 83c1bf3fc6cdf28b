package recommend

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/pkg/models"
)

// InterestedSemantic promotes candidates close to papers the user previously
// marked interested. Nearest-neighbor semantics: each candidate is scored by
// its maximum similarity to any single liked paper. Closeness to one liked
// paper is enough; averaging over the whole liked set would dilute the
// signal.
type InterestedSemantic struct {
	logger *logrus.Logger
}

func NewInterestedSemantic(deps Dependencies) *InterestedSemantic {
	return &InterestedSemantic{logger: deps.Logger}
}

func (s *InterestedSemantic) Name() string       { return StrategyInterestedSemantic }
func (s *InterestedSemantic) Kind() StrategyKind { return KindScoring }

func (s *InterestedSemantic) Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error) {
	refs := feedbackEmbeddings(profile.LikedPapers)
	if len(refs) == 0 {
		s.logger.Debug("No liked papers with embeddings, interested_semantic returns empty ranking")
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
		"strategy":     s.Name(),
		"candidates":   len(pool),
		"ranked":       len(entries),
		"liked_papers": len(refs),
	}).Debug("Interested semantic ranking computed")

	return &Outcome{Ranking: &models.StrategyRanking{Strategy: s.Name(), Entries: entries}}, nil
}

// feedbackEmbeddings collects the non-nil embeddings from judged papers.
func feedbackEmbeddings(papers []models.FeedbackPaper) [][]float32 {
	refs := make([][]float32, 0, len(papers))
	for _, p := range papers {
		if len(p.Embedding) > 0 {
			refs = append(refs, p.Embedding)
		}
	}
	return refs
}
