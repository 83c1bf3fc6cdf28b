package recommend

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"

	"github.com/mistward/paperfuse/pkg/models"
)

// DisinterestedFilter excludes candidates whose title or abstract contains
// any disinterested keyword. Pure substring matching, case-insensitive via
// Unicode case folding; presence is binary, there is no partial score.
type DisinterestedFilter struct {
	logger *logrus.Logger
}

func NewDisinterestedFilter(deps Dependencies) *DisinterestedFilter {
	return &DisinterestedFilter{logger: deps.Logger}
}

func (s *DisinterestedFilter) Name() string       { return StrategyDisinterestedFilter }
func (s *DisinterestedFilter) Kind() StrategyKind { return KindFilter }

func (s *DisinterestedFilter) Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error) {
	// Casers are stateful; fold per call so shared strategy instances stay
	// safe under concurrent passes.
	folder := cases.Fold()

	keywords := make([]string, 0, len(profile.DisinterestedKeywords))
	for _, kw := range profile.DisinterestedKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		keywords = append(keywords, folder.String(kw))
	}

	decisions := make([]models.FilterDecision, 0, len(pool))
	excluded := 0
	for _, cand := range pool {
		decision := models.FilterDecision{Ref: cand.Ref, Action: models.FilterKeep}
		if len(keywords) > 0 {
			title := folder.String(cand.Title)
			abstract := folder.String(cand.Abstract)
			for _, kw := range keywords {
				if strings.Contains(title, kw) || strings.Contains(abstract, kw) {
					decision.Action = models.FilterExclude
					excluded++
					break
				}
			}
		}
		decisions = append(decisions, decision)
	}

	s.logger.WithFields(logrus.Fields{
		"strategy":   s.Name(),
		"candidates": len(pool),
		"excluded":   excluded,
		"keywords":   len(keywords),
	}).Debug("Disinterest keyword filter applied")

	return &Outcome{Decisions: decisions}, nil
}
