package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistward/paperfuse/pkg/models"
)

func TestLLMThemes_BestThemeMatchScoresCandidate(t *testing.T) {
	strategy := NewLLMThemes(testDependencies())

	profile := &models.UserProfile{
		Themes: []models.InterestTheme{
			{Name: "efficient attention", Embedding: []float32{1, 0, 0}},
			{Name: "graph learning", Embedding: []float32{0, 1, 0}},
		},
	}
	pool := []models.Candidate{
		candidate("graphy", []float32{0, 1, 0}),    // matches second theme exactly
		candidate("neither", []float32{0, 0, 1}),   // orthogonal to both
		candidate("attentive", []float32{4, 3, 0}), // 0.8 to first theme, 0.6 to second
	}

	outcome, err := strategy.Compute(context.Background(), pool, profile)

	require.NoError(t, err)
	entries := outcome.Ranking.Entries
	require.Len(t, entries, 3)
	assert.Equal(t, ref("graphy"), entries[0].Ref)
	assert.InDelta(t, 1.0, entries[0].Score, 1e-9)
	assert.Equal(t, ref("attentive"), entries[1].Ref)
	assert.InDelta(t, 0.8, entries[1].Score, 1e-9)
	assert.Equal(t, ref("neither"), entries[2].Ref)
	assert.InDelta(t, 0.0, entries[2].Score, 1e-9)
}

func TestLLMThemes_NoThemesReturnsEmptyRanking(t *testing.T) {
	strategy := NewLLMThemes(testDependencies())

	pool := []models.Candidate{candidate("a", unitVec(0.9))}

	for name, profile := range map[string]*models.UserProfile{
		"no themes":            {},
		"theme without vector": {Themes: []models.InterestTheme{{Name: "bare"}}},
	} {
		t.Run(name, func(t *testing.T) {
			outcome, err := strategy.Compute(context.Background(), pool, profile)
			require.NoError(t, err)
			require.NotNil(t, outcome.Ranking)
			assert.Empty(t, outcome.Ranking.Entries)
		})
	}
}
