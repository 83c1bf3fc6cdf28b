package models

import (
	"time"

	"github.com/google/uuid"
)

type ScoredPaper struct {
	Ref   PaperRef `json:"ref"`
	Score float64  `json:"score"`
}

// StrategyRanking is the output of one scoring strategy: entries ordered by
// descending score, ties in stable input order. Rank is the 1-based position.
type StrategyRanking struct {
	Strategy string        `json:"strategy"`
	Entries  []ScoredPaper `json:"entries"`
}

type FilterAction string

const (
	FilterKeep     FilterAction = "keep"
	FilterExclude  FilterAction = "exclude"
	FilterPenalize FilterAction = "penalize"
)

type FilterDecision struct {
	Ref     PaperRef     `json:"ref"`
	Action  FilterAction `json:"action"`
	Penalty float64      `json:"penalty,omitempty"` // only meaningful for penalize
}

// Contribution records one strategy's part in a fused item for provenance.
type Contribution struct {
	Strategy string  `json:"strategy"`
	Rank     int     `json:"rank"`
	RawScore float64 `json:"raw_score"`
}

type FusedItem struct {
	Ref           PaperRef       `json:"ref"`
	Score         float64        `json:"score"`
	Position      int            `json:"position"`
	Contributions []Contribution `json:"contributions,omitempty"`
	Candidate     *Candidate     `json:"candidate,omitempty"`
}

// FusedResult is the final ordered output of one fusion pass. Items are
// non-increasing in score; Degraded lists strategies whose contribution was
// dropped during the pass.
type FusedResult struct {
	PassID      uuid.UUID   `json:"pass_id"`
	Items       []FusedItem `json:"items"`
	Degraded    []string    `json:"degraded,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
}
