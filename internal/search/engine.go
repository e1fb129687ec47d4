// Package search implements hybrid retrieval over judgment chunks. A BM25
// lexical index and a vector semantic index are queried in parallel and
// their scores fused into one ranked list.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/embed"
	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/store"
)

// Engine coordinates the lexical index, the semantic index, and the fusion
// ranker. The registry and lexical index are rebuilt wholesale on ingest and
// published as a single snapshot, so concurrent searches never observe a
// half-rebuilt corpus.
type Engine struct {
	snap            atomic.Pointer[snapshot]
	semantic        store.SemanticIndex
	embedder        embed.Embedder
	weights         Weights
	params          store.LexicalParams
	topK            int
	semanticTimeout time.Duration
	logger          *slog.Logger
}

// NewEngine wires the engine from configuration and its backing stores.
// The engine starts without a corpus; Build must run before Search returns
// anything.
func NewEngine(cfg *config.Config, semantic store.SemanticIndex, embedder embed.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		semantic: semantic,
		embedder: embedder,
		weights: Weights{
			Lexical:  cfg.Search.LexicalWeight,
			Semantic: cfg.Search.SemanticWeight,
		},
		params: store.LexicalParams{
			K1: cfg.Search.BM25K1,
			B:  cfg.Search.BM25B,
		},
		topK:            cfg.Search.TopK,
		semanticTimeout: cfg.Search.SemanticTimeout.AsDuration(),
		logger:          logger.With("component", "search"),
	}
}

// Build constructs a fresh registry and lexical index from the chunk set and
// publishes them atomically. The previous snapshot keeps serving searches
// until the swap. An empty chunk set is a configuration fault and leaves the
// current snapshot in place.
func (e *Engine) Build(ctx context.Context, chunks []store.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lexical, err := store.BuildLexicalIndex(chunks, e.params)
	if err != nil {
		return err
	}
	registry := store.NewRegistry(chunks)

	e.snap.Store(&snapshot{registry: registry, lexical: lexical})
	e.logger.Info("index published",
		"chunks", registry.Len(),
		"vocabulary", lexical.Size())
	return nil
}

// Ready reports whether a corpus has been built.
func (e *Engine) Ready() bool {
	return e.snap.Load() != nil
}

// CorpusSize returns the number of chunks in the current snapshot.
func (e *Engine) CorpusSize() int {
	snap := e.snap.Load()
	if snap == nil {
		return 0
	}
	return snap.registry.Len()
}

// Search runs the lexical and semantic rankers in parallel and fuses their
// results. A transient semantic failure degrades the response to lexical-only
// ranking instead of failing the search; the response is annotated so callers
// can tell.
func (e *Engine) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	opts.applyDefaults()

	snap := e.snap.Load()
	if snap == nil {
		return nil, caseerr.EmptyCorpusError("no corpus indexed; ingest a judgment first")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return &Response{Results: []Result{}}, nil
	}

	start := time.Now()
	var (
		lexical        []store.LexicalResult
		semantic       []store.SemanticHit
		degradedReason string
		err            error
	)
	if opts.LexicalOnly {
		lexical = snap.lexical.Search(query, opts.TopK)
	} else {
		lexical, semantic, degradedReason, err = e.parallelSearch(ctx, snap, query, opts.TopK)
		if err != nil {
			return nil, err
		}
	}

	results, err := fuseResults(lexical, semantic, e.weights, opts.TopK, snap.registry)
	if err != nil {
		return nil, err
	}

	resp := &Response{Results: results}
	if degradedReason != "" {
		resp.Degraded = true
		resp.DegradedReason = degradedReason
	}

	e.logger.Debug("search complete",
		"query_len", len(query),
		"lexical_candidates", len(lexical),
		"semantic_candidates", len(semantic),
		"results", len(results),
		"degraded", resp.Degraded,
		"elapsed", time.Since(start))
	return resp, nil
}

// parallelSearch queries both rankers concurrently, each capped at k
// candidates. The semantic branch runs under its own timeout and records
// transient failures instead of propagating them; fatal faults still abort
// the search.
func (e *Engine) parallelSearch(ctx context.Context, snap *snapshot, query string, k int) ([]store.LexicalResult, []store.SemanticHit, string, error) {
	var (
		lexical  []store.LexicalResult
		semantic []store.SemanticHit
		semErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lexical = snap.lexical.Search(query, k)
		return nil
	})

	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, e.semanticTimeout)
		defer cancel()

		hits, err := e.semanticQuery(sctx, query, k)
		if err != nil {
			semErr = err
			return nil
		}
		semantic = hits
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, "", err
	}

	if semErr != nil {
		if caseerr.IsFatal(semErr) {
			return nil, nil, "", semErr
		}
		e.logger.Warn("semantic backend unavailable, serving lexical-only results",
			"error", semErr)
		return lexical, nil, semErr.Error(), nil
	}
	return lexical, semantic, "", nil
}

// semanticQuery embeds the query and probes the vector index. Deadline and
// cancellation errors are folded into the transient timeout code so the
// caller degrades uniformly.
func (e *Engine) semanticQuery(ctx context.Context, query string, k int) ([]store.SemanticHit, error) {
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, caseerr.TimeoutError("query embedding timed out", err)
		}
		return nil, err
	}

	hits, err := e.semantic.Search(ctx, vector, k)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, caseerr.TimeoutError("semantic search timed out", err)
		}
		return nil, err
	}
	return hits, nil
}

// Close releases the engine's backing resources.
func (e *Engine) Close() error {
	var errs []error
	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.semantic != nil {
		if err := e.semantic.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
