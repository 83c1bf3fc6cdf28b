package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database   DatabaseConfig       `mapstructure:"database"`
	Redis      RedisConfig          `mapstructure:"redis"`
	Kafka      KafkaConfig          `mapstructure:"kafka"`
	Embeddings EmbeddingsConfig     `mapstructure:"embeddings"`
	Profile    ProfileConfig        `mapstructure:"profile"`
	Logging    LoggingConfig        `mapstructure:"logging"`
	Recommend  RecommendationConfig `mapstructure:"recommend"`
	Monitoring MonitoringConfig     `mapstructure:"monitoring"`
	Schedule   ScheduleConfig       `mapstructure:"schedule"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Recommendations string `mapstructure:"recommendations"`
	} `mapstructure:"topics"`
}

type EmbeddingsConfig struct {
	BaseURL    string        `mapstructure:"base_url"` // empty selects the deterministic local backend
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Workers    int           `mapstructure:"workers"`
	QueueSize  int           `mapstructure:"queue_size"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

type ProfileConfig struct {
	InterestedDays int `mapstructure:"interested_days"` // feedback lookback window
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RecommendationConfig is the per-pass contract of the fusion engine. Field
// ranges are enforced at load time and again when an orchestrator is built.
type RecommendationConfig struct {
	EnabledStrategies    []string      `mapstructure:"enabled_strategies" validate:"required,min=1"`
	TopK                 int           `mapstructure:"top_k" validate:"gt=0"`
	MinSimilarity        float64       `mapstructure:"min_similarity" validate:"gte=0,lte=1"`
	RRFK                 int           `mapstructure:"rrf_k" validate:"gt=0"`
	DisinterestThreshold float64       `mapstructure:"disinterest_threshold" validate:"gte=0,lte=1"`
	DownweightFactor     float64       `mapstructure:"downweight_factor" validate:"gte=0"`
	ScoringOverfetch     int           `mapstructure:"scoring_overfetch" validate:"gte=1"`
	StrategyTimeout      time.Duration `mapstructure:"strategy_timeout"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Port        string `mapstructure:"port"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type ScheduleConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	At       string        `mapstructure:"at"` // "HH:MM" local time; when set, overrides Interval
}

func Load() (*Config, error) {
	viper.SetConfigName("paperfuse")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate enforces the struct-level range constraints. Strategy names are
// not resolved here; the registry owns that check.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(&c.Recommend); err != nil {
		return fmt.Errorf("recommend config: %w", err)
	}
	return nil
}

func setDefaults() {
	// Database defaults
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.min_connections", 2)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	viper.SetDefault("kafka.topics.recommendations", "recommendations.generated")

	// Embedding provider defaults
	viper.SetDefault("embeddings.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embeddings.dimensions", 384)
	viper.SetDefault("embeddings.timeout", "30s")
	viper.SetDefault("embeddings.workers", 4)
	viper.SetDefault("embeddings.queue_size", 100)
	viper.SetDefault("embeddings.cache_ttl", "24h")

	// Profile defaults
	viper.SetDefault("profile.interested_days", 30)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation defaults
	viper.SetDefault("recommend.enabled_strategies", []string{
		"keyword_semantic",
		"interested_semantic",
		"llm_themes",
		"disinterested_filter",
		"disinterested_semantic",
		"repetition_filter",
	})
	viper.SetDefault("recommend.top_k", 10)
	viper.SetDefault("recommend.min_similarity", 0.5)
	viper.SetDefault("recommend.rrf_k", 60)
	viper.SetDefault("recommend.disinterest_threshold", 0.3)
	viper.SetDefault("recommend.downweight_factor", 0.5)
	viper.SetDefault("recommend.scoring_overfetch", 2)
	viper.SetDefault("recommend.strategy_timeout", "10s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.port", "9090")
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Schedule defaults
	viper.SetDefault("schedule.interval", "24h")
	viper.SetDefault("schedule.at", "")
}
