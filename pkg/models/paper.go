package models

import (
	"fmt"
	"time"
)

// PaperRef identifies a paper by origin. The (Source, ExternalID) pair is
// unique across the corpus and is the only identity the engine relies on.
type PaperRef struct {
	Source     string `json:"source" db:"source" validate:"required"`
	ExternalID string `json:"external_id" db:"external_id" validate:"required"`
}

// Key renders the canonical "source:external_id" form used for map keys,
// final-ranking tie-breaks and log fields.
func (r PaperRef) Key() string {
	return fmt.Sprintf("%s:%s", r.Source, r.ExternalID)
}

type Candidate struct {
	Ref              PaperRef  `json:"ref"`
	Title            string    `json:"title" db:"title" validate:"required,min=1"`
	Abstract         string    `json:"abstract,omitempty" db:"abstract"`
	Authors          []string  `json:"authors,omitempty" db:"authors"`
	URL              string    `json:"url,omitempty" db:"url"`
	PublishedAt      time.Time `json:"published_at" db:"published_at"`
	Embedding        []float32 `json:"embedding,omitempty" db:"embedding"` // nil until computed upstream
	TimesRecommended int       `json:"times_recommended" db:"times_recommended"`
}

type FetchCriteria struct {
	Since   time.Time `json:"since,omitempty"`
	Sources []string  `json:"sources,omitempty"`
	Limit   int       `json:"limit,omitempty" validate:"omitempty,gt=0"`
}
