package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/internal/database"
	"github.com/mistward/paperfuse/internal/embeddings"
	"github.com/mistward/paperfuse/internal/messaging"
	"github.com/mistward/paperfuse/internal/metrics"
	"github.com/mistward/paperfuse/internal/recommend"
	"github.com/mistward/paperfuse/internal/store"
	"github.com/mistward/paperfuse/pkg/models"
)

// CandidateStore is the paper source of a fusion pass. Implemented by the
// Postgres store and the JSON-file store.
type CandidateStore interface {
	FetchCandidatePool(ctx context.Context, criteria models.FetchCriteria) ([]models.Candidate, error)
	MarkRecommended(ctx context.Context, refs []models.PaperRef) error
}

// ProfileStore supplies the interest snapshot a pass scores against.
type ProfileStore interface {
	LoadProfile(ctx context.Context) (*models.UserProfile, error)
}

// Options select the input sources and side effects of this process.
type Options struct {
	CandidatesFile string // read the pool from a JSON document instead of Postgres
	ProfileFile    string // read the profile from a JSON document
	Mark           bool   // record surfacing and publish the event after a pass

	// Registerer receives the pass instruments; nil disables metrics.
	Registerer prometheus.Registerer
}

type App struct {
	Config *config.Config
	Logger *logrus.Logger

	db        *database.Database
	embedder  *embeddings.Service
	publisher *messaging.Publisher
	runner    *Runner
}

func New(cfg *config.Config, opts Options) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: setupLogger(cfg),
	}

	// Initialize backing connections; both are optional and a file-backed
	// run configures neither.
	db, err := database.New(cfg, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	// Initialize embedding provider
	app.embedder = embeddings.NewService(cfg.Embeddings, db.Redis, app.Logger)

	// Initialize event publisher
	app.publisher = messaging.NewPublisher(cfg, app.Logger)

	candidates, profiles, err := app.buildStores(opts)
	if err != nil {
		return nil, err
	}

	var recorder *metrics.Recorder
	if opts.Registerer != nil {
		recorder = metrics.New(opts.Registerer)
	}

	orchestrator, err := recommend.NewOrchestrator(
		&cfg.Recommend, recommend.NewRegistry(), app.embedder, app.Logger, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to build orchestrator: %w", err)
	}

	app.runner = &Runner{
		logger:       app.Logger,
		orchestrator: orchestrator,
		candidates:   candidates,
		profiles:     profiles,
		publisher:    app.publisher,
		strategies:   cfg.Recommend.EnabledStrategies,
		mark:         opts.Mark,
	}

	return app, nil
}

func (a *App) Runner() *Runner {
	return a.runner
}

func (a *App) buildStores(opts Options) (CandidateStore, ProfileStore, error) {
	if opts.CandidatesFile != "" {
		fileStore, err := store.NewFileStore(opts.CandidatesFile, opts.ProfileFile, a.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build file store: %w", err)
		}
		return fileStore, fileStore, nil
	}

	if a.db.PG == nil {
		return nil, nil, fmt.Errorf("no candidate source: set database.url or pass --candidates")
	}

	pgStore := store.NewPostgresStore(a.db.PG, a.Config.Profile, a.Logger)
	return pgStore, pgStore, nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application...")

	a.embedder.Stop()

	if err := a.publisher.Close(); err != nil {
		a.Logger.WithError(err).Error("Error closing Kafka publisher")
	}

	if err := a.db.Close(); err != nil {
		a.Logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
