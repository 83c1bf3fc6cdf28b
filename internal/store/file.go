package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/validation"
	"github.com/mistward/paperfuse/pkg/models"
)

// FileStore serves one-shot runs from JSON documents on disk: a candidate
// pool file and a profile file, both schema-validated before decoding.
// MarkRecommended is tracked in memory only, so repetition penalties build up
// within a process but nothing is written back.
type FileStore struct {
	candidatesPath string
	profilePath    string
	validator      *validation.DocumentValidator
	logger         *logrus.Logger

	mu     sync.Mutex
	marked map[models.PaperRef]int
}

// poolDocument is the on-disk shape of a candidate pool.
type poolDocument struct {
	Papers []models.Candidate `json:"papers"`
}

func NewFileStore(candidatesPath, profilePath string, logger *logrus.Logger) (*FileStore, error) {
	validator, err := validation.NewDocumentValidator()
	if err != nil {
		return nil, err
	}

	return &FileStore{
		candidatesPath: candidatesPath,
		profilePath:    profilePath,
		validator:      validator,
		logger:         logger,
		marked:         map[models.PaperRef]int{},
	}, nil
}

// FetchCandidatePool reads and validates the candidate file, applies the
// criteria in memory and folds in any in-process surfacing counts.
func (s *FileStore) FetchCandidatePool(ctx context.Context, criteria models.FetchCriteria) ([]models.Candidate, error) {
	data, err := os.ReadFile(s.candidatesPath)
	if err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}
	if err := s.validator.ValidateCandidatePool(data); err != nil {
		return nil, err
	}

	var doc poolDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode candidates file: %w", err)
	}

	wantSource := map[string]bool{}
	for _, src := range criteria.Sources {
		wantSource[src] = true
	}

	pool := make([]models.Candidate, 0, len(doc.Papers))
	for _, cand := range doc.Papers {
		if !criteria.Since.IsZero() && cand.PublishedAt.Before(criteria.Since) {
			continue
		}
		if len(wantSource) > 0 && !wantSource[cand.Ref.Source] {
			continue
		}
		pool = append(pool, cand)
	}

	// Newest first, like the database store.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].PublishedAt.After(pool[j].PublishedAt)
	})

	if criteria.Limit > 0 && len(pool) > criteria.Limit {
		pool = pool[:criteria.Limit]
	}

	s.mu.Lock()
	for i := range pool {
		pool[i].TimesRecommended += s.marked[pool[i].Ref]
	}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"file":       s.candidatesPath,
		"candidates": len(pool),
	}).Debug("Candidate pool loaded from file")

	return pool, nil
}

// LoadProfile reads and validates the profile file. A store built without a
// profile path yields an empty profile.
func (s *FileStore) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	if s.profilePath == "" {
		return &models.UserProfile{}, nil
	}

	data, err := os.ReadFile(s.profilePath)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	if err := s.validator.ValidateProfile(data); err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode profile file: %w", err)
	}

	return &profile, nil
}

// MarkRecommended bumps the in-memory counters.
func (s *FileStore) MarkRecommended(ctx context.Context, refs []models.PaperRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		s.marked[ref]++
	}
	return nil
}
