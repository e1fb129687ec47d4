// Package ingest drives the judgment ingestion pipeline: parse raw text,
// persist the structured judgment, chunk every stored judgment, embed the
// chunks, and publish fresh lexical and semantic indexes.
package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caselens/caselens/internal/chunk"
	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/docstore"
	"github.com/caselens/caselens/internal/embed"
	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/judgment"
	"github.com/caselens/caselens/internal/search"
	"github.com/caselens/caselens/internal/store"
)

// Stats summarizes one ingestion or rebuild run.
type Stats struct {
	Judgments int           `json:"judgments"`
	Chunks    int           `json:"chunks"`
	Vectors   int           `json:"vectors"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Pipeline owns the full ingest path. Rebuilds are full: every stored
// judgment is rechunked and reindexed, and the engine snapshot is swapped
// once everything is ready.
type Pipeline struct {
	cfg       *config.Config
	docs      *docstore.Store
	embedder  embed.Embedder
	semantic  store.SemanticIndex
	engine    *search.Engine
	chunker   *chunk.Chunker
	extractor judgment.TextExtractor
	metadata  judgment.MetadataExtractor
	lock      *RebuildLock
	logger    *slog.Logger
}

// New wires a pipeline from its collaborators.
func New(cfg *config.Config, docs *docstore.Store, embedder embed.Embedder, semantic store.SemanticIndex, engine *search.Engine, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	counter := chunk.NewTokenCounter(cfg.Chunking.Encoding)
	return &Pipeline{
		cfg:       cfg,
		docs:      docs,
		embedder:  embedder,
		semantic:  semantic,
		engine:    engine,
		chunker:   chunk.NewChunker(cfg.Chunking.MinTokens, cfg.Chunking.MaxTokens, counter),
		extractor: judgment.PlainTextExtractor{},
		metadata:  judgment.HeuristicExtractor{},
		lock:      NewRebuildLock(cfg.Storage.DataDir),
		logger:    logger.With("component", "ingest"),
	}
}

// WithExtractors swaps the text and metadata extractors; a nil argument
// keeps the current one. External PDF or LLM services plug in here.
func (p *Pipeline) WithExtractors(text judgment.TextExtractor, metadata judgment.MetadataExtractor) *Pipeline {
	if text != nil {
		p.extractor = text
	}
	if metadata != nil {
		p.metadata = metadata
	}
	return p
}

// IngestFile extracts text from the named file and ingests it.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*judgment.Judgment, *Stats, error) {
	ext := filepath.Ext(path)
	if !p.extractor.Supports(ext) {
		return nil, nil, caseerr.ValidationError("unsupported file type "+ext, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, caseerr.New(caseerr.ErrCodeFileNotFound, "could not open "+path, err)
	}
	defer f.Close()

	text, err := p.extractor.Extract(ctx, f)
	if err != nil {
		return nil, nil, caseerr.ValidationError("could not extract text from "+path, err)
	}
	return p.IngestText(ctx, text)
}

// IngestText parses raw judgment text, persists the structured record, and
// rebuilds the indexes over the whole stored corpus.
func (p *Pipeline) IngestText(ctx context.Context, raw string) (*judgment.Judgment, *Stats, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, caseerr.ValidationError("judgment text is empty", nil)
	}

	j, err := p.metadata.ExtractMetadata(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	if len(j.Paragraphs) == 0 {
		return nil, nil, caseerr.ValidationError("no judgment body found in text", nil)
	}

	if err := p.docs.Upsert(ctx, j); err != nil {
		return nil, nil, err
	}
	p.logger.Info("judgment stored",
		"title", j.Title,
		"paragraphs", len(j.Paragraphs),
		"citations", len(j.Citations))

	stats, err := p.Rebuild(ctx)
	if err != nil {
		return nil, nil, err
	}
	return j, stats, nil
}

// Rebuild rechunks and reindexes every stored judgment. The rebuild lock
// serializes concurrent rebuilds across processes; the engine snapshot swap
// keeps searches consistent within this one.
func (p *Pipeline) Rebuild(ctx context.Context) (*Stats, error) {
	if err := p.lock.Lock(); err != nil {
		return nil, caseerr.New(caseerr.ErrCodeIndexFailed, "could not lock data directory for rebuild", err)
	}
	defer func() {
		if err := p.lock.Unlock(); err != nil {
			p.logger.Warn("failed to release rebuild lock", "error", err)
		}
	}()

	start := time.Now()

	judgments, err := p.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(judgments) == 0 {
		return nil, caseerr.EmptyCorpusError("no judgments stored; nothing to index")
	}

	var chunks []store.Chunk
	for _, j := range judgments {
		chunks = append(chunks, p.chunker.Build(j, slugify(j.Title))...)
	}
	if len(chunks) == 0 {
		return nil, caseerr.EmptyCorpusError("stored judgments produced no chunks")
	}

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ChunkID
	}
	if err := p.semantic.Reset(ctx); err != nil {
		return nil, caseerr.New(caseerr.ErrCodeIndexFailed, "failed to reset vector index", err)
	}
	if err := p.semantic.Upsert(ctx, ids, vectors); err != nil {
		return nil, caseerr.New(caseerr.ErrCodeIndexFailed, "failed to upsert vectors", err)
	}

	if err := p.engine.Build(ctx, chunks); err != nil {
		return nil, err
	}

	p.persistVectors()

	stats := &Stats{
		Judgments: len(judgments),
		Chunks:    len(chunks),
		Vectors:   len(vectors),
		Elapsed:   time.Since(start),
	}
	p.logger.Info("rebuild complete",
		"judgments", stats.Judgments,
		"chunks", stats.Chunks,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// Restore rebuilds the engine from stored judgments using vectors saved
// by a previous rebuild, skipping the embedding pass. It fails when no
// snapshot exists or the snapshot no longer matches the stored corpus;
// callers fall back to Rebuild.
func (p *Pipeline) Restore(ctx context.Context) (*Stats, error) {
	persister, ok := p.semantic.(store.VectorPersister)
	if !ok {
		return nil, caseerr.New(caseerr.ErrCodeFileNotFound, "vector index does not support snapshots", nil)
	}

	start := time.Now()

	judgments, err := p.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(judgments) == 0 {
		return nil, caseerr.EmptyCorpusError("no judgments stored; nothing to index")
	}

	var chunks []store.Chunk
	for _, j := range judgments {
		chunks = append(chunks, p.chunker.Build(j, slugify(j.Title))...)
	}

	if err := persister.Load(p.vectorPath()); err != nil {
		return nil, err
	}
	if p.semantic.Count() != len(chunks) {
		return nil, caseerr.New(caseerr.ErrCodeConsistency, "vector snapshot does not match stored corpus", nil)
	}
	for _, c := range chunks {
		if !persister.Contains(c.ChunkID) {
			return nil, caseerr.New(caseerr.ErrCodeConsistency, "vector snapshot is missing chunk "+c.ChunkID, nil)
		}
	}

	if err := p.engine.Build(ctx, chunks); err != nil {
		return nil, err
	}

	stats := &Stats{
		Judgments: len(judgments),
		Chunks:    len(chunks),
		Vectors:   p.semantic.Count(),
		Elapsed:   time.Since(start),
	}
	p.logger.Info("restored indexes from snapshot",
		"judgments", stats.Judgments,
		"chunks", stats.Chunks,
		"elapsed", stats.Elapsed)
	return stats, nil
}

// persistVectors snapshots the vector index when the backend supports it.
// Persistence is advisory; a failed save only costs a re-embed on the
// next start.
func (p *Pipeline) persistVectors() {
	persister, ok := p.semantic.(store.VectorPersister)
	if !ok {
		return
	}
	if err := persister.Save(p.vectorPath()); err != nil {
		p.logger.Warn("failed to persist vector index", "error", err)
	}
}

func (p *Pipeline) vectorPath() string {
	return filepath.Join(p.cfg.Storage.DataDir, "vectors.hnsw")
}

// embedChunks embeds chunk texts in batches, bounded by the configured
// worker count. Each batch writes into its own slice region so no mutex is
// needed.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []store.Chunk) ([][]float32, error) {
	batchSize := p.cfg.Embeddings.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	workers := p.cfg.Storage.IndexWorkers
	if workers <= 0 {
		workers = 4
	}

	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for begin := 0; begin < len(chunks); begin += batchSize {
		end := begin + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			texts := make([]string, end-begin)
			for i, c := range chunks[begin:end] {
				texts[i] = c.Text
			}
			batch, err := p.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			copy(vectors[begin:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// slugify derives a stable chunk ID prefix from a case title.
func slugify(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
