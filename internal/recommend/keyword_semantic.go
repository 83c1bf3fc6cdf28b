package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/pkg/models"
)

// KeywordSemantic scores candidates by cosine similarity between their
// embeddings and a query vector built from the profile's interested keywords
// and interest description. Candidates below the configured minimum
// similarity are omitted from the ranking entirely: a hard relevance floor,
// not a low score.
type KeywordSemantic struct {
	cfg      *config.RecommendationConfig
	embedder EmbeddingProvider
	logger   *logrus.Logger
}

func NewKeywordSemantic(deps Dependencies) *KeywordSemantic {
	return &KeywordSemantic{
		cfg:      deps.Config,
		embedder: deps.Embedder,
		logger:   deps.Logger,
	}
}

func (s *KeywordSemantic) Name() string       { return StrategyKeywordSemantic }
func (s *KeywordSemantic) Kind() StrategyKind { return KindScoring }

func (s *KeywordSemantic) Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error) {
	query := buildInterestQuery(profile)
	if query == "" {
		s.logger.Debug("No interest keywords or description configured, keyword_semantic returns empty ranking")
		return &Outcome{Ranking: &models.StrategyRanking{Strategy: s.Name()}}, nil
	}

	// One batched provider call per pass; the query is the only text that
	// needs a fresh embedding, candidate vectors arrive on the pool.
	vectors, err := s.embedder.EmbedMany(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed interest query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed interest query: provider returned no vector")
	}
	queryVec := vectors[0]

	entries := make([]models.ScoredPaper, 0, len(pool))
	skipped := 0
	for _, cand := range pool {
		if len(cand.Embedding) == 0 {
			skipped++
			continue
		}
		sim := cosineSimilarity(cand.Embedding, queryVec)
		if sim < s.cfg.MinSimilarity {
			continue
		}
		entries = append(entries, models.ScoredPaper{Ref: cand.Ref, Score: sim})
	}

	// Descending score, ties in stable input order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	s.logger.WithFields(logrus.Fields{
		"strategy":       s.Name(),
		"candidates":     len(pool),
		"ranked":         len(entries),
		"no_embedding":   skipped,
		"min_similarity": s.cfg.MinSimilarity,
	}).Debug("Keyword semantic ranking computed")

	return &Outcome{Ranking: &models.StrategyRanking{Strategy: s.Name(), Entries: entries}}, nil
}

func buildInterestQuery(profile *models.UserProfile) string {
	var parts []string
	if len(profile.InterestedKeywords) > 0 {
		parts = append(parts, strings.Join(profile.InterestedKeywords, " "))
	}
	if profile.InterestDescription != "" {
		parts = append(parts, profile.InterestDescription)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
