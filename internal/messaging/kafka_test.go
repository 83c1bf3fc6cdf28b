package messaging

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestBuildEvent(t *testing.T) {
	result := &models.FusedResult{
		PassID:      uuid.New(),
		GeneratedAt: time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC),
		Degraded:    []string{"llm_themes"},
		Items: []models.FusedItem{
			{
				Ref:      models.PaperRef{Source: "arxiv", ExternalID: "2602.01234"},
				Score:    0.048,
				Position: 1,
				Candidate: &models.Candidate{
					Title: "Sparse attention at scale",
					URL:   "https://arxiv.org/abs/2602.01234",
				},
			},
			{
				Ref:      models.PaperRef{Source: "hackernews", ExternalID: "43120077"},
				Score:    0.031,
				Position: 2,
				// not hydrated
			},
		},
	}

	event := buildEvent(result, []string{"keyword_semantic", "llm_themes"})

	assert.Equal(t, result.PassID, event.PassID)
	assert.Equal(t, result.GeneratedAt, event.GeneratedAt)
	assert.Equal(t, []string{"keyword_semantic", "llm_themes"}, event.Strategies)
	assert.Equal(t, []string{"llm_themes"}, event.Degraded)

	require.Len(t, event.Items, 2)
	assert.Equal(t, "Sparse attention at scale", event.Items[0].Title)
	assert.Equal(t, "https://arxiv.org/abs/2602.01234", event.Items[0].URL)
	assert.Equal(t, 1, event.Items[0].Position)

	assert.Empty(t, event.Items[1].Title, "unhydrated items carry the ref only")
	assert.Equal(t, "hackernews:43120077", event.Items[1].Ref.Key())
}

func TestNewPublisher_TopicSelection(t *testing.T) {
	t.Run("falls back to the default topic", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Kafka.Brokers = []string{"localhost:9092"}

		publisher := NewPublisher(cfg, testLogger())
		defer publisher.Close()

		assert.True(t, publisher.Enabled())
		assert.Equal(t, DefaultRecommendationsTopic, publisher.topic)
	})

	t.Run("honours the configured topic", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Kafka.Brokers = []string{"localhost:9092"}
		cfg.Kafka.Topics.Recommendations = "paperfuse.digest"

		publisher := NewPublisher(cfg, testLogger())
		defer publisher.Close()

		assert.Equal(t, "paperfuse.digest", publisher.topic)
	})
}

func TestPublisher_DisabledWithoutBrokers(t *testing.T) {
	publisher := NewPublisher(&config.Config{}, testLogger())

	assert.False(t, publisher.Enabled())

	result := &models.FusedResult{PassID: uuid.New(), GeneratedAt: time.Now()}
	err := publisher.PublishRecommendations(context.Background(), result, []string{"keyword_semantic"})

	require.NoError(t, err, "publishing without brokers is a silent no-op")
	require.NoError(t, publisher.Close())
}
