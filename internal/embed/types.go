// Package embed provides text embedding for judgment chunks and queries.
//
// Two providers exist: a deterministic hash-based embedder that needs no
// external service, and an OpenAI-compatible client for real embedding
// models served locally or remotely. Both produce unit-length vectors so
// the semantic index can treat cosine distance uniformly.
package embed

import (
	"context"
	"math"

	"github.com/caselens/caselens/internal/config"
	caseerr "github.com/caselens/caselens/internal/errors"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier for logging and cache keys.
	ModelName() string

	// Available reports whether the backend is reachable.
	Available(ctx context.Context) bool

	Close() error
}

// NewEmbedder constructs the embedder selected by the configuration,
// wrapped in an LRU cache.
func NewEmbedder(cfg config.EmbeddingsConfig) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case "", "static":
		inner = NewStaticEmbedder(cfg.Dimensions)
	case "openai":
		e, err := NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, caseerr.ConfigError("unknown embeddings provider: "+cfg.Provider, nil)
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}

// normalizeVector scales a vector to unit length. Zero vectors are
// returned unchanged.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
	return v
}
