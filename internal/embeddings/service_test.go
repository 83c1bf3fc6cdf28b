package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistward/paperfuse/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func localService(t *testing.T, dimensions int) *Service {
	t.Helper()
	s := NewService(config.EmbeddingsConfig{
		Model:      "test-model",
		Dimensions: dimensions,
		Workers:    2,
		QueueSize:  8,
	}, nil, testLogger())
	t.Cleanup(s.Stop)
	return s
}

func TestService_LocalEmbeddingsAreDeterministic(t *testing.T) {
	s := localService(t, 64)
	ctx := context.Background()

	first, err := s.Embed(ctx, "attention is all you need")
	require.NoError(t, err)
	second, err := s.Embed(ctx, "attention is all you need")
	require.NoError(t, err)
	other, err := s.Embed(ctx, "a completely different abstract")
	require.NoError(t, err)

	require.Len(t, first, 64)
	assert.Equal(t, first, second, "same text must always map to the same vector")
	assert.NotEqual(t, first, other)

	var sumSquares float64
	for _, v := range first {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-6, "local vectors are L2 normalized")
}

func TestService_EmbedManyKeepsInputOrder(t *testing.T) {
	s := localService(t, 32)

	out, err := s.EmbedMany(context.Background(), []string{"alpha", "beta", "alpha"})

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, out[0], out[2])
	assert.NotEqual(t, out[0], out[1])
}

func TestService_EmptyInputsRejected(t *testing.T) {
	s := localService(t, 16)

	_, err := s.Embed(context.Background(), "")
	assert.Error(t, err)

	_, err = s.EmbedMany(context.Background(), nil)
	assert.Error(t, err)
}

func TestService_RemoteBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, []string{"hello"}, req.Input)

		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.6, 0.8}}})
	}))
	defer server.Close()

	s := NewService(config.EmbeddingsConfig{
		BaseURL:    server.URL,
		APIKey:     "secret",
		Model:      "test-model",
		Dimensions: 2,
		Workers:    1,
		QueueSize:  4,
	}, nil, testLogger())
	defer s.Stop()

	vec, err := s.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, vec)
}

func TestService_RemoteDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 2, 3}}})
	}))
	defer server.Close()

	s := NewService(config.EmbeddingsConfig{
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 2,
		Workers:    1,
	}, nil, testLogger())
	defer s.Stop()

	_, err := s.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestService_RemoteServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewService(config.EmbeddingsConfig{
		BaseURL: server.URL,
		Model:   "test-model",
		Workers: 1,
	}, nil, testLogger())
	defer s.Stop()

	_, err := s.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
