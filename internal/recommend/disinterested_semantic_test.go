package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistward/paperfuse/pkg/models"
)

func dislikedPaper(id string, embedding []float32) models.FeedbackPaper {
	return models.FeedbackPaper{
		Ref:       ref(id),
		Title:     "Disliked " + id,
		Embedding: embedding,
	}
}

func TestDisinterestedSemantic_ExcludesAboveThreshold(t *testing.T) {
	deps := testDependencies()
	deps.Config.DisinterestThreshold = 0.6
	strategy := NewDisinterestedSemantic(deps)

	profile := &models.UserProfile{
		DislikedPapers: []models.FeedbackPaper{
			dislikedPaper("bad-a", []float32{1, 0, 0}),
			dislikedPaper("bad-b", []float32{0, 1, 0}),
		},
	}
	// too-close sits at 0.8 from bad-a; at-threshold at exactly 0.6 from
	// bad-a and 0 from bad-b, and the strictly-greater rule keeps it.
	pool := []models.Candidate{
		candidate("too-close", []float32{4, 3, 0}),
		candidate("at-threshold", []float32{3, 0, 4}),
		candidate("far", []float32{0, 0, 1}),
		candidate("no-vector", nil),
	}

	outcome, err := strategy.Compute(context.Background(), pool, profile)

	require.NoError(t, err)
	require.Len(t, outcome.Decisions, len(pool))
	assert.Equal(t, models.FilterExclude, decisionFor(t, outcome.Decisions, ref("too-close")).Action)
	assert.Equal(t, models.FilterKeep, decisionFor(t, outcome.Decisions, ref("at-threshold")).Action)
	assert.Equal(t, models.FilterKeep, decisionFor(t, outcome.Decisions, ref("far")).Action)
	assert.Equal(t, models.FilterKeep, decisionFor(t, outcome.Decisions, ref("no-vector")).Action)
}

func TestDisinterestedSemantic_NeverPenalizesOrBoosts(t *testing.T) {
	strategy := NewDisinterestedSemantic(testDependencies())

	profile := &models.UserProfile{
		DislikedPapers: []models.FeedbackPaper{dislikedPaper("bad", []float32{1, 0, 0})},
	}
	// Orthogonal and opposite candidates are maximally unlike the disliked
	// paper; distance still only means keep, not a score bonus.
	pool := []models.Candidate{
		candidate("orthogonal", []float32{0, 1, 0}),
		candidate("opposite", []float32{-1, 0, 0}),
	}

	outcome, err := strategy.Compute(context.Background(), pool, profile)

	require.NoError(t, err)
	for _, d := range outcome.Decisions {
		assert.Equal(t, models.FilterKeep, d.Action)
		assert.Zero(t, d.Penalty)
	}
}

func TestDisinterestedSemantic_NoDislikedPapersKeepsEverything(t *testing.T) {
	strategy := NewDisinterestedSemantic(testDependencies())

	pool := []models.Candidate{
		candidate("a", unitVec(0.9)),
		candidate("b", unitVec(0.1)),
	}

	outcome, err := strategy.Compute(context.Background(), pool, &models.UserProfile{})

	require.NoError(t, err)
	require.Len(t, outcome.Decisions, 2)
	for _, d := range outcome.Decisions {
		assert.Equal(t, models.FilterKeep, d.Action)
	}
}
