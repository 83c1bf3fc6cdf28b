package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/pkg/models"
)

// Querier is the slice of pgx the store needs; pgxmock satisfies it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresStore reads papers, feedback and the profile from Postgres and
// records surfacing counters. Embeddings travel as pgvector values; the pool
// must have pgvector types registered (database.New does this).
type PostgresStore struct {
	db       Querier
	lookback time.Duration
	logger   *logrus.Logger
}

func NewPostgresStore(db Querier, profileCfg config.ProfileConfig, logger *logrus.Logger) *PostgresStore {
	days := profileCfg.InterestedDays
	if days <= 0 {
		days = 30
	}
	return &PostgresStore{
		db:       db,
		lookback: time.Duration(days) * 24 * time.Hour,
		logger:   logger,
	}
}

const candidatePoolQuery = `
	SELECT source, external_id, title, abstract, authors, url, published_at, embedding, times_recommended
	FROM papers
	WHERE ($1::timestamptz IS NULL OR published_at >= $1)
	  AND ($2::text[] IS NULL OR source = ANY($2))
	ORDER BY published_at DESC`

// FetchCandidatePool returns the papers matching the criteria, newest first.
func (s *PostgresStore) FetchCandidatePool(ctx context.Context, criteria models.FetchCriteria) ([]models.Candidate, error) {
	var since interface{}
	if !criteria.Since.IsZero() {
		since = criteria.Since
	}
	var sources interface{}
	if len(criteria.Sources) > 0 {
		sources = criteria.Sources
	}

	query := candidatePoolQuery
	args := []interface{}{since, sources}
	if criteria.Limit > 0 {
		query += " LIMIT $3"
		args = append(args, criteria.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidate pool: %w", err)
	}
	defer rows.Close()

	var pool []models.Candidate
	for rows.Next() {
		var cand models.Candidate
		var embedding *pgvector.Vector
		if err := rows.Scan(
			&cand.Ref.Source, &cand.Ref.ExternalID,
			&cand.Title, &cand.Abstract, &cand.Authors, &cand.URL, &cand.PublishedAt,
			&embedding, &cand.TimesRecommended,
		); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		if embedding != nil {
			cand.Embedding = embedding.Slice()
		}
		pool = append(pool, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}

	s.logger.WithField("candidates", len(pool)).Debug("Candidate pool fetched")
	return pool, nil
}

// LoadProfile assembles the interest snapshot: the singleton profile row,
// feedback within the lookback window and the interest themes. A database
// without a profile row yields an empty profile, not an error.
func (s *PostgresStore) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	profile := &models.UserProfile{}

	err := s.db.QueryRow(ctx, `
		SELECT interested_keywords, disinterested_keywords, interest_description
		FROM user_profile
		LIMIT 1`,
	).Scan(&profile.InterestedKeywords, &profile.DisinterestedKeywords, &profile.InterestDescription)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load profile row: %w", err)
	}

	if err := s.loadFeedback(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.loadThemes(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"liked":    len(profile.LikedPapers),
		"disliked": len(profile.DislikedPapers),
		"themes":   len(profile.Themes),
	}).Debug("Profile loaded")

	return profile, nil
}

func (s *PostgresStore) loadFeedback(ctx context.Context, profile *models.UserProfile) error {
	rows, err := s.db.Query(ctx, `
		SELECT source, external_id, title, verdict, embedding
		FROM paper_feedback
		WHERE created_at >= $1`,
		time.Now().Add(-s.lookback),
	)
	if err != nil {
		return fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var paper models.FeedbackPaper
		var verdict string
		var embedding *pgvector.Vector
		if err := rows.Scan(&paper.Ref.Source, &paper.Ref.ExternalID, &paper.Title, &verdict, &embedding); err != nil {
			return fmt.Errorf("scan feedback row: %w", err)
		}
		if embedding != nil {
			paper.Embedding = embedding.Slice()
		}

		switch verdict {
		case "liked":
			profile.LikedPapers = append(profile.LikedPapers, paper)
		case "disliked":
			profile.DislikedPapers = append(profile.DislikedPapers, paper)
		default:
			s.logger.WithFields(logrus.Fields{
				"ref":     paper.Ref.Key(),
				"verdict": verdict,
			}).Warn("Skipping feedback row with unknown verdict")
		}
	}
	return rows.Err()
}

func (s *PostgresStore) loadThemes(ctx context.Context, profile *models.UserProfile) error {
	rows, err := s.db.Query(ctx, `SELECT name, description, embedding FROM interest_themes`)
	if err != nil {
		return fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var theme models.InterestTheme
		var embedding *pgvector.Vector
		if err := rows.Scan(&theme.Name, &theme.Description, &embedding); err != nil {
			return fmt.Errorf("scan theme row: %w", err)
		}
		if embedding != nil {
			theme.Embedding = embedding.Slice()
		}
		profile.Themes = append(profile.Themes, theme)
	}
	return rows.Err()
}

// MarkRecommended increments the surfacing counter for each ref. Refs that no
// longer exist are skipped silently; the counter is advisory.
func (s *PostgresStore) MarkRecommended(ctx context.Context, refs []models.PaperRef) error {
	for _, ref := range refs {
		_, err := s.db.Exec(ctx, `
			UPDATE papers
			SET times_recommended = times_recommended + 1, last_recommended_at = now()
			WHERE source = $1 AND external_id = $2`,
			ref.Source, ref.ExternalID,
		)
		if err != nil {
			return fmt.Errorf("mark %s recommended: %w", ref.Key(), err)
		}
	}
	return nil
}
