package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/pkg/models"
)

const DefaultRecommendationsTopic = "recommendations.generated"

// RecommendationEvent is the wire form of one completed fusion pass.
// Downstream consumers (digest mailer, reading-list sync) only need refs and
// display fields, not the full contribution breakdown.
type RecommendationEvent struct {
	PassID      uuid.UUID          `json:"pass_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Strategies  []string           `json:"strategies"`
	Degraded    []string           `json:"degraded,omitempty"`
	Items       []RecommendedPaper `json:"items"`
}

type RecommendedPaper struct {
	Ref      models.PaperRef `json:"ref"`
	Title    string          `json:"title,omitempty"`
	URL      string          `json:"url,omitempty"`
	Score    float64         `json:"score"`
	Position int             `json:"position"`
}

// Publisher emits one event per fusion pass. A publisher built without
// brokers is a no-op, so callers never have to branch on whether Kafka is
// part of the deployment.
type Publisher struct {
	writer *kafka.Writer
	topic  string
	logger *logrus.Logger
}

func NewPublisher(cfg *config.Config, logger *logrus.Logger) *Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka not configured, recommendation events disabled")
		return &Publisher{logger: logger}
	}

	topic := cfg.Kafka.Topics.Recommendations
	if topic == "" {
		topic = DefaultRecommendationsTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by pass id so one pass lands on one partition
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	return &Publisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// Enabled reports whether events will actually leave the process.
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) PublishRecommendations(ctx context.Context, result *models.FusedResult, strategies []string) error {
	if p.writer == nil {
		return nil
	}

	event := buildEvent(result, strategies)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(result.PassID.String()),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "pass_id", Value: []byte(result.PassID.String())},
			{Key: "generated_at", Value: []byte(result.GeneratedAt.Format(time.RFC3339))},
			{Key: "item_count", Value: []byte(strconv.Itoa(len(event.Items)))},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.WithError(err).WithField("pass_id", result.PassID).Error("Failed to publish recommendation event")
		return fmt.Errorf("failed to write event to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"pass_id": result.PassID,
		"items":   len(event.Items),
		"topic":   p.topic,
	}).Info("Recommendation event published")

	return nil
}

func buildEvent(result *models.FusedResult, strategies []string) RecommendationEvent {
	event := RecommendationEvent{
		PassID:      result.PassID,
		GeneratedAt: result.GeneratedAt,
		Strategies:  strategies,
		Degraded:    result.Degraded,
		Items:       make([]RecommendedPaper, 0, len(result.Items)),
	}

	for _, item := range result.Items {
		paper := RecommendedPaper{
			Ref:      item.Ref,
			Score:    item.Score,
			Position: item.Position,
		}
		if item.Candidate != nil {
			paper.Title = item.Candidate.Title
			paper.URL = item.Candidate.URL
		}
		event.Items = append(event.Items, paper)
	}

	return event
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}
