package embed

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/caselens/caselens/internal/config"
	caseerr "github.com/caselens/caselens/internal/errors"
)

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
// Local servers (llama.cpp, LocalAI, text-embeddings-inference) expose
// the same surface, so one client covers hosted and self-hosted setups.
type OpenAIEmbedder struct {
	embedder   embeddings.Embedder
	model      string
	dimensions int
	retry      caseerr.RetryPolicy
	logger     *slog.Logger
}

// NewOpenAIEmbedder creates an embedder against the configured endpoint.
func NewOpenAIEmbedder(cfg config.EmbeddingsConfig) (*OpenAIEmbedder, error) {
	if cfg.Host == "" {
		return nil, caseerr.ConfigError("embeddings.host is required for the openai provider", nil)
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.Host),
		openai.WithEmbeddingModel(cfg.Model),
	}
	// Local OpenAI-compatible services usually ignore the token but the
	// client requires one.
	opts = append(opts, openai.WithToken("none"))

	client, err := openai.New(opts...)
	if err != nil {
		return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to create embedding client", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to create embedder", err)
	}

	return &OpenAIEmbedder{
		embedder:   embedder,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		retry:      caseerr.DefaultRetryPolicy(),
		logger:     slog.Default().With(slog.String("component", "openai-embedder")),
	}, nil
}

// Embed generates an embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, caseerr.New(caseerr.ErrCodeEmbeddingFailed, "backend returned no embedding", nil)
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vecs, err := caseerr.RetryTransient(ctx, e.retry, func(ctx context.Context) ([][]float32, error) {
		vecs, err := e.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			e.logger.Warn("embedding request failed",
				slog.Int("count", len(texts)),
				slog.String("error", err.Error()))
			if ctx.Err() != nil {
				return nil, caseerr.TimeoutError("embedding request timed out", err)
			}
			return nil, caseerr.New(caseerr.ErrCodeEmbeddingFailed, "embedding request failed", err)
		}
		return vecs, nil
	})
	if err != nil {
		return nil, err
	}

	for i, v := range vecs {
		if e.dimensions > 0 && len(v) != e.dimensions {
			return nil, caseerr.New(caseerr.ErrCodeDimensionMismatch,
				"backend returned unexpected vector size", nil).
				WithDetail("model", e.model)
		}
		vecs[i] = normalizeVector(v)
	}
	return vecs, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the model identifier.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// Available probes the backend with a tiny embedding request.
func (e *OpenAIEmbedder) Available(ctx context.Context) bool {
	_, err := e.embedder.EmbedDocuments(ctx, []string{"ping"})
	return err == nil
}

// Close releases resources. The HTTP client holds no persistent state.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

var _ Embedder = (*OpenAIEmbedder)(nil)
