package recommend

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
)

// Strategy names accepted in the enabled_strategies list.
const (
	StrategyKeywordSemantic       = "keyword_semantic"
	StrategyInterestedSemantic    = "interested_semantic"
	StrategyLLMThemes             = "llm_themes"
	StrategyDisinterestedFilter   = "disinterested_filter"
	StrategyDisinterestedSemantic = "disinterested_semantic"
	StrategyRepetitionFilter      = "repetition_filter"
)

// Dependencies is what strategy builders get to work with.
type Dependencies struct {
	Config   *config.RecommendationConfig
	Embedder EmbeddingProvider
	Logger   *logrus.Logger
}

// Builder constructs one strategy instance from shared dependencies.
type Builder func(deps Dependencies) Strategy

// Registry maps strategy names to builders. The built-in set is registered by
// NewRegistry; additional strategies can be added with Register before any
// orchestrator is built.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	// Built-in strategies. Registering a fixed set here keeps dispatch in one
	// place; unknown configured names fail at resolve time, not mid-pass.
	r.mustRegister(StrategyKeywordSemantic, func(d Dependencies) Strategy { return NewKeywordSemantic(d) })
	r.mustRegister(StrategyInterestedSemantic, func(d Dependencies) Strategy { return NewInterestedSemantic(d) })
	r.mustRegister(StrategyLLMThemes, func(d Dependencies) Strategy { return NewLLMThemes(d) })
	r.mustRegister(StrategyDisinterestedFilter, func(d Dependencies) Strategy { return NewDisinterestedFilter(d) })
	r.mustRegister(StrategyDisinterestedSemantic, func(d Dependencies) Strategy { return NewDisinterestedSemantic(d) })
	r.mustRegister(StrategyRepetitionFilter, func(d Dependencies) Strategy { return NewRepetitionFilter(d) })

	return r
}

// Register adds a strategy builder under a new name. Re-registering an
// existing name is an error rather than a silent override.
func (r *Registry) Register(name string, builder Builder) error {
	if name == "" {
		return fmt.Errorf("strategy name must not be empty")
	}
	if builder == nil {
		return fmt.Errorf("strategy %q: builder must not be nil", name)
	}
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.builders[name] = builder
	return nil
}

func (r *Registry) mustRegister(name string, builder Builder) {
	if err := r.Register(name, builder); err != nil {
		panic(err)
	}
}

// Known returns the registered strategy names, sorted.
func (r *Registry) Known() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StrategySet is the resolved, partitioned enabled set. Filters keep the
// enabled-list order; scoring strategies are order-insensitive.
type StrategySet struct {
	Scoring []Strategy
	Filters []Strategy
}

// Resolve builds the enabled strategies from a configured name list. Empty
// lists, unknown names and duplicates are configuration errors, reported
// here before any pass runs.
func (r *Registry) Resolve(names []string, deps Dependencies) (*StrategySet, error) {
	if len(names) == 0 {
		return nil, configError("enabled_strategies", "must name at least one strategy")
	}

	seen := make(map[string]bool, len(names))
	set := &StrategySet{}
	for _, name := range names {
		builder, ok := r.builders[name]
		if !ok {
			return nil, unknownStrategyError(name, r.Known())
		}
		if seen[name] {
			return nil, configError("enabled_strategies", "strategy %q listed twice", name)
		}
		seen[name] = true

		strategy := builder(deps)
		switch strategy.Kind() {
		case KindFilter:
			set.Filters = append(set.Filters, strategy)
		default:
			set.Scoring = append(set.Scoring, strategy)
		}
	}

	return set, nil
}
