package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/docstore"
	"github.com/caselens/caselens/internal/embed"
	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/ingest"
	"github.com/caselens/caselens/internal/search"
	"github.com/caselens/caselens/internal/store"
)

// appStack is the fully wired application: document store, embedder,
// vector index, search engine, and ingest pipeline.
type appStack struct {
	cfg      *config.Config
	docs     *docstore.Store
	embedder embed.Embedder
	semantic *store.HNSWIndex
	engine   *search.Engine
	pipeline *ingest.Pipeline
}

// openStack wires the application from configuration. When the document
// store already holds judgments the indexes are rebuilt so searches work
// immediately.
func openStack(ctx context.Context, cfg *config.Config) (*appStack, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return nil, caseerr.ConfigError("could not create data directory", err)
	}

	docs, err := docstore.Open(filepath.Join(cfg.Storage.DataDir, "cases.db"))
	if err != nil {
		return nil, err
	}

	embedder, err := embed.NewEmbedder(cfg.Embeddings)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}

	semantic, err := store.NewHNSWIndex(cfg.Embeddings.Dimensions)
	if err != nil {
		_ = docs.Close()
		_ = embedder.Close()
		return nil, err
	}

	engine := search.NewEngine(cfg, semantic, embedder, slog.Default())
	pipeline := ingest.New(cfg, docs, embedder, semantic, engine, slog.Default())

	s := &appStack{
		cfg:      cfg,
		docs:     docs,
		embedder: embedder,
		semantic: semantic,
		engine:   engine,
		pipeline: pipeline,
	}

	count, err := docs.Count(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	if count > 0 {
		// A vector snapshot from the previous run avoids re-embedding
		// the whole corpus at startup.
		if _, err := pipeline.Restore(ctx); err != nil {
			slog.Default().Debug("no usable vector snapshot, rebuilding", "error", err)
			if _, err := pipeline.Rebuild(ctx); err != nil {
				s.Close()
				return nil, err
			}
		}
	}
	return s, nil
}

// Close releases all stack resources.
func (s *appStack) Close() error {
	var errs []error
	// Engine.Close covers the embedder and the vector index.
	if err := s.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.docs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
