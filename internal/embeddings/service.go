package embeddings

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/internal/recommend"
)

// Service generates text embeddings behind a fixed-size worker pool. Vectors
// come from an embedding server when base_url is configured, otherwise from a
// deterministic local generator, and are cached in Redis either way so a paper
// is only ever embedded once per model.
type Service struct {
	cfg    config.EmbeddingsConfig
	redis  *redis.Client
	http   *http.Client
	logger *logrus.Logger

	workerPool chan chan job
	jobQueue   chan job
	workers    []*worker
}

// job is a single text on its way through the pool. The response channel is
// buffered so a worker never blocks on a caller that gave up.
type job struct {
	ctx      context.Context
	text     string
	response chan result
}

type result struct {
	embedding []float32
	cached    bool
	err       error
}

type worker struct {
	id         int
	service    *Service
	jobChannel chan job
	quit       chan struct{}
}

var _ recommend.EmbeddingProvider = (*Service)(nil)

// NewService builds the provider and starts its workers. A nil Redis client
// disables caching, nothing else.
func NewService(cfg config.EmbeddingsConfig, redisClient *redis.Client, logger *logrus.Logger) *Service {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 100
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	s := &Service{
		cfg:        cfg,
		redis:      redisClient,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		workerPool: make(chan chan job, cfg.Workers),
		jobQueue:   make(chan job, cfg.QueueSize),
	}
	s.startWorkers()

	return s
}

func (s *Service) startWorkers() {
	s.workers = make([]*worker, s.cfg.Workers)
	for i := range s.workers {
		w := &worker{
			id:         i,
			service:    s,
			jobChannel: make(chan job),
			quit:       make(chan struct{}),
		}
		s.workers[i] = w
		go w.run()
	}

	go s.dispatch()
}

// dispatch hands each queued job to the next idle worker.
func (s *Service) dispatch() {
	for j := range s.jobQueue {
		jobChannel := <-s.workerPool
		jobChannel <- j
	}
}

func (w *worker) run() {
	for {
		w.service.workerPool <- w.jobChannel

		select {
		case j := <-w.jobChannel:
			w.process(j)
		case <-w.quit:
			return
		}
	}
}

func (w *worker) process(j job) {
	start := time.Now()

	if embedding, ok := w.service.cachedEmbedding(j.ctx, j.text); ok {
		j.response <- result{embedding: embedding, cached: true}
		return
	}

	embedding, err := w.service.generate(j.ctx, j.text)
	if err != nil {
		j.response <- result{err: err}
		return
	}

	w.service.cacheEmbedding(j.ctx, j.text, embedding)

	w.service.logger.WithFields(logrus.Fields{
		"worker":     w.id,
		"dimensions": len(embedding),
		"latency":    time.Since(start),
	}).Debug("Embedding generated")

	j.response <- result{embedding: embedding}
}

// Embed returns the embedding for a single text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}

	j := job{ctx: ctx, text: text, response: make(chan result, 1)}

	select {
	case s.jobQueue <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-j.response:
		return res.embedding, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EmbedMany embeds a batch of texts, fanning them across the pool and
// returning vectors in input order.
func (s *Service) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts must not be empty")
	}

	jobs := make([]job, len(texts))
	for i, text := range texts {
		jobs[i] = job{ctx: ctx, text: text, response: make(chan result, 1)}

		select {
		case s.jobQueue <- jobs[i]:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	embeddings := make([][]float32, len(texts))
	for i := range jobs {
		select {
		case res := <-jobs[i].response:
			if res.err != nil {
				return nil, fmt.Errorf("embed text %d: %w", i, res.err)
			}
			embeddings[i] = res.embedding
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return embeddings, nil
}

func (s *Service) generate(ctx context.Context, text string) ([]float32, error) {
	if s.cfg.BaseURL != "" {
		return s.remoteEmbedding(ctx, text)
	}
	return s.localEmbedding(text), nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// remoteEmbedding calls an Ollama-style embedding server.
func (s *Service) remoteEmbedding(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: s.cfg.Model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding server returned no vectors")
	}

	vec := out.Embeddings[0]
	if s.cfg.Dimensions > 0 && len(vec) != s.cfg.Dimensions {
		return nil, fmt.Errorf("model %s returned %d dimensions, expected %d", s.cfg.Model, len(vec), s.cfg.Dimensions)
	}

	return vec, nil
}

// localEmbedding derives a unit vector from sha256(model, text). The same
// text always maps to the same vector, which is what similarity math and the
// cache need; it carries no semantics and exists for development and tests.
func (s *Service) localEmbedding(text string) []float32 {
	seed := sha256.Sum256([]byte(s.cfg.Model + "\x00" + text))

	embedding := make([]float32, s.cfg.Dimensions)
	var block [sha256.Size]byte
	for i := range embedding {
		if i%sha256.Size == 0 {
			var counter [8]byte
			binary.BigEndian.PutUint64(counter[:], uint64(i/sha256.Size))
			h := sha256.New()
			h.Write(seed[:])
			h.Write(counter[:])
			copy(block[:], h.Sum(nil))
		}
		embedding[i] = float32(block[i%sha256.Size])/255.0 - 0.5
	}

	return l2Normalize(embedding)
}

// l2Normalize scales the vector to unit length, in float64 for precision.
func l2Normalize(embedding []float32) []float32 {
	vec := make([]float64, len(embedding))
	for i, v := range embedding {
		vec[i] = float64(v)
	}

	norm := floats.Norm(vec, 2)
	if norm == 0 {
		return embedding
	}

	normalized := make([]float32, len(embedding))
	for i, v := range vec {
		normalized[i] = float32(v / norm)
	}

	return normalized
}

func (s *Service) cachedEmbedding(ctx context.Context, text string) ([]float32, bool) {
	if s.redis == nil {
		return nil, false
	}

	key := s.cacheKey(text)
	data, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(data), &embedding); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Dropping undecodable cached embedding")
		return nil, false
	}

	return embedding, true
}

func (s *Service) cacheEmbedding(ctx context.Context, text string, embedding []float32) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(embedding)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to serialize embedding for caching")
		return
	}

	if err := s.redis.Set(ctx, s.cacheKey(text), data, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to cache embedding")
	}
}

func (s *Service) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embed:%s:%x", s.cfg.Model, sum[:8])
}

// Stop shuts the worker pool down. In-flight jobs finish first.
func (s *Service) Stop() {
	for _, w := range s.workers {
		close(w.quit)
	}
	s.logger.Info("Embedding service stopped")
}
