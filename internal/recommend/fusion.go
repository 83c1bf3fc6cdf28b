package recommend

import (
	"sort"

	"github.com/mistward/paperfuse/pkg/models"
)

// FusionEngine merges per-strategy rankings with Reciprocal Rank Fusion.
//
// A candidate's fused score is the sum of 1/(k+rank) over every scoring
// ranking it appears in, rank being the 1-based position after excluded
// candidates have been removed. Absence from a ranking contributes nothing.
// RRF deliberately ignores the raw scores: the constituent strategies use
// incomparable scales (cosine similarity, binary matches, history counters),
// and rank position is the one signal they share.
type FusionEngine struct {
	k int
}

func NewFusionEngine(k int) *FusionEngine {
	return &FusionEngine{k: k}
}

type fusedAggregate struct {
	score         float64
	contributions []models.Contribution
}

// Fuse applies filter decisions, merges the scoring rankings and returns the
// final ordering truncated to topK. Exclusions are honored before rank
// assignment; penalties discount the fused sum multiplicatively after it,
// fused/(1+penalty), so they act on the combined signal rather than on any
// single strategy. Ties in fused score break by ascending candidate key,
// which keeps identical inputs producing identical output.
func (f *FusionEngine) Fuse(rankings []models.StrategyRanking, decisions []models.FilterDecision, topK int) []models.FusedItem {
	excluded := make(map[models.PaperRef]bool)
	discounts := make(map[models.PaperRef]float64)
	for _, d := range decisions {
		switch d.Action {
		case models.FilterExclude:
			excluded[d.Ref] = true
		case models.FilterPenalize:
			if d.Penalty > 0 {
				if _, ok := discounts[d.Ref]; !ok {
					discounts[d.Ref] = 1.0
				}
				discounts[d.Ref] *= 1.0 + d.Penalty
			}
		}
	}

	aggregates := make(map[models.PaperRef]*fusedAggregate)
	for _, ranking := range rankings {
		rank := 0
		for _, entry := range ranking.Entries {
			if excluded[entry.Ref] {
				continue
			}
			rank++

			agg, ok := aggregates[entry.Ref]
			if !ok {
				agg = &fusedAggregate{}
				aggregates[entry.Ref] = agg
			}
			agg.score += 1.0 / float64(f.k+rank)
			agg.contributions = append(agg.contributions, models.Contribution{
				Strategy: ranking.Strategy,
				Rank:     rank,
				RawScore: entry.Score,
			})
		}
	}

	items := make([]models.FusedItem, 0, len(aggregates))
	for ref, agg := range aggregates {
		score := agg.score
		if discount, ok := discounts[ref]; ok {
			score /= discount
		}
		items = append(items, models.FusedItem{
			Ref:           ref,
			Score:         score,
			Contributions: agg.contributions,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score == items[j].Score {
			return items[i].Ref.Key() < items[j].Ref.Key()
		}
		return items[i].Score > items[j].Score
	})

	if topK > 0 && len(items) > topK {
		items = items[:topK]
	}
	for i := range items {
		items[i].Position = i + 1
	}

	return items
}
