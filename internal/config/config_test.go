package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, 2, cfg.Database.MinConnections)
	assert.Equal(t, 15*time.Minute, cfg.Database.MaxIdleTime)
	assert.Equal(t, time.Hour, cfg.Database.MaxLifetime)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Empty(t, cfg.Database.URL, "no database is configured out of the box")

	assert.Equal(t, 3, cfg.Redis.MaxRetries)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Redis.Timeout)

	assert.Equal(t, "recommendations.generated", cfg.Kafka.Topics.Recommendations)
	assert.Empty(t, cfg.Kafka.Brokers)

	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embeddings.Model)
	assert.Equal(t, 384, cfg.Embeddings.Dimensions)
	assert.Equal(t, 30*time.Second, cfg.Embeddings.Timeout)
	assert.Equal(t, 4, cfg.Embeddings.Workers)
	assert.Equal(t, 100, cfg.Embeddings.QueueSize)
	assert.Equal(t, 24*time.Hour, cfg.Embeddings.CacheTTL)

	assert.Equal(t, 30, cfg.Profile.InterestedDays)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.Equal(t, []string{
		"keyword_semantic",
		"interested_semantic",
		"llm_themes",
		"disinterested_filter",
		"disinterested_semantic",
		"repetition_filter",
	}, cfg.Recommend.EnabledStrategies)
	assert.Equal(t, 10, cfg.Recommend.TopK)
	assert.Equal(t, 0.5, cfg.Recommend.MinSimilarity)
	assert.Equal(t, 60, cfg.Recommend.RRFK)
	assert.Equal(t, 0.3, cfg.Recommend.DisinterestThreshold)
	assert.Equal(t, 0.5, cfg.Recommend.DownweightFactor)
	assert.Equal(t, 2, cfg.Recommend.ScoringOverfetch)
	assert.Equal(t, 10*time.Second, cfg.Recommend.StrategyTimeout)

	assert.True(t, cfg.Monitoring.Enabled)
	assert.Equal(t, "9090", cfg.Monitoring.Port)
	assert.Equal(t, "/metrics", cfg.Monitoring.MetricsPath)

	assert.Equal(t, 24*time.Hour, cfg.Schedule.Interval)
	assert.Empty(t, cfg.Schedule.At)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("RECOMMEND_TOP_K", "5")
	t.Setenv("RECOMMEND_MIN_SIMILARITY", "0.65")
	t.Setenv("LOGGING_LEVEL", "debug")
	t.Setenv("SCHEDULE_INTERVAL", "6h")
	t.Setenv("SCHEDULE_AT", "07:30")
	t.Setenv("EMBEDDINGS_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Recommend.TopK)
	assert.Equal(t, 0.65, cfg.Recommend.MinSimilarity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 6*time.Hour, cfg.Schedule.Interval)
	assert.Equal(t, "07:30", cfg.Schedule.At)
	assert.Equal(t, 8, cfg.Embeddings.Workers)

	// Untouched keys keep their defaults.
	assert.Equal(t, 60, cfg.Recommend.RRFK)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_RejectsInvalidRecommendValues(t *testing.T) {
	t.Setenv("RECOMMEND_TOP_K", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "recommend config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Recommend: RecommendationConfig{
				EnabledStrategies:    []string{"keyword_semantic"},
				TopK:                 10,
				MinSimilarity:        0.5,
				RRFK:                 60,
				DisinterestThreshold: 0.3,
				DownweightFactor:     0.5,
				ScoringOverfetch:     2,
			},
		}
	}

	t.Run("accepts a well-formed recommend block", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no strategies", func(c *Config) { c.Recommend.EnabledStrategies = nil }},
		{"zero top_k", func(c *Config) { c.Recommend.TopK = 0 }},
		{"similarity above one", func(c *Config) { c.Recommend.MinSimilarity = 1.5 }},
		{"negative rrf_k", func(c *Config) { c.Recommend.RRFK = -60 }},
		{"threshold above one", func(c *Config) { c.Recommend.DisinterestThreshold = 2 }},
		{"negative downweight", func(c *Config) { c.Recommend.DownweightFactor = -1 }},
		{"zero overfetch", func(c *Config) { c.Recommend.ScoringOverfetch = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "recommend config")
		})
	}
}
