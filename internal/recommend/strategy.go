package recommend

import (
	"context"

	"github.com/mistward/paperfuse/pkg/models"
)

// StrategyKind separates strategies that rank candidates from strategies
// that gate them.
type StrategyKind string

const (
	KindScoring StrategyKind = "scoring"
	KindFilter  StrategyKind = "filter"
)

// EmbeddingProvider turns text into vectors. Both operations may fail per
// call; a failure degrades only the strategies that needed the result, never
// the whole pass.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// Outcome is what one strategy invocation hands back. Scoring strategies
// populate Ranking; filter strategies populate Decisions with one entry per
// pool candidate. Exactly one side is set.
type Outcome struct {
	Ranking   *models.StrategyRanking
	Decisions []models.FilterDecision
}

// Strategy is the capability every pluggable signal implements.
//
// Compute is a pure function of its inputs: no side effects, no state
// retained between calls, safe for concurrent invocations. Implementations
// that need embeddings must tolerate candidates with a nil embedding by
// leaving them out of their own ranking rather than failing the pass.
type Strategy interface {
	Name() string
	Kind() StrategyKind
	Compute(ctx context.Context, pool []models.Candidate, profile *models.UserProfile) (*Outcome, error)
}
