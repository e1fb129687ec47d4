package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/internal/config"
	"github.com/caselens/caselens/internal/embed"
	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/store"
)

// stubSemantic returns canned hits, or fails every search with err.
type stubSemantic struct {
	hits []store.SemanticHit
	err  error
}

func (s *stubSemantic) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	return nil
}

func (s *stubSemantic) Search(ctx context.Context, query []float32, k int) ([]store.SemanticHit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.hits) > k {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubSemantic) Reset(ctx context.Context) error { return nil }
func (s *stubSemantic) Count() int                      { return len(s.hits) }
func (s *stubSemantic) Close() error                    { return nil }

// blockingSemantic never answers before the search deadline.
type blockingSemantic struct {
	stubSemantic
}

func (s *blockingSemantic) Search(ctx context.Context, query []float32, k int) ([]store.SemanticHit, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testEngine(t *testing.T, semantic store.SemanticIndex) *Engine {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Search.SemanticTimeout = config.Duration(100 * time.Millisecond)
	embedder := embed.NewStaticEmbedder(cfg.Embeddings.Dimensions)
	eng := NewEngine(cfg, semantic, embedder, nil)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func courtOrderCorpus() []store.Chunk {
	return []store.Chunk{
		{ChunkID: "j1_chunk_0", Text: "the court held the petition is dismissed", Section: store.SectionHolding, CaseTitle: "A v. B"},
		{ChunkID: "j1_chunk_1", Text: "issues raised by the petitioner", Section: store.SectionIssues, CaseTitle: "A v. B"},
		{ChunkID: "j1_chunk_2", Text: "final order: appeal allowed", Section: store.SectionHolding, CaseTitle: "A v. B"},
	}
}

func TestEngineSearchBeforeBuild(t *testing.T) {
	eng := testEngine(t, &stubSemantic{})
	_, err := eng.Search(context.Background(), "anything", Options{})
	require.Error(t, err)
	assert.Equal(t, caseerr.ErrCodeEmptyCorpus, caseerr.GetCode(err))
}

func TestEngineBuildEmptyCorpus(t *testing.T) {
	eng := testEngine(t, &stubSemantic{})
	err := eng.Build(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, caseerr.ErrCodeEmptyCorpus, caseerr.GetCode(err))
	assert.False(t, eng.Ready())
}

func TestEngineEmptyQuery(t *testing.T) {
	eng := testEngine(t, &stubSemantic{})
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	for _, query := range []string{"", "   ", "\t\n"} {
		resp, err := eng.Search(context.Background(), query, Options{})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
		assert.False(t, resp.Degraded)
	}
}

func TestEngineUniformSemanticPreservesLexicalOrder(t *testing.T) {
	// With identical similarity for every chunk the semantic term is a
	// constant offset, so the fused ranking follows the lexical ranking:
	// both term-matching chunks come out above the non-matching one.
	semantic := &stubSemantic{hits: []store.SemanticHit{
		{ChunkID: "j1_chunk_0", Score: 0.5},
		{ChunkID: "j1_chunk_1", Score: 0.5},
		{ChunkID: "j1_chunk_2", Score: 0.5},
	}}
	eng := testEngine(t, semantic)
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	resp, err := eng.Search(context.Background(), "court order", Options{TopK: 3})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.False(t, resp.Degraded)

	assert.Equal(t, "j1_chunk_1", resp.Results[2].ChunkID)
	for _, r := range resp.Results[:2] {
		assert.Contains(t, []string{"j1_chunk_0", "j1_chunk_2"}, r.ChunkID)
	}
}

func TestEngineDegradesOnSemanticTimeout(t *testing.T) {
	eng := testEngine(t, &blockingSemantic{})
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	resp, err := eng.Search(context.Background(), "court order", Options{TopK: 3})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.NotEmpty(t, resp.DegradedReason)

	// Lexical-only results still come back ranked.
	require.NotEmpty(t, resp.Results)
	assert.NotEqual(t, "j1_chunk_1", resp.Results[0].ChunkID)
}

func TestEngineLexicalOnlySkipsSemantic(t *testing.T) {
	// The unavailable backend would normally mark the response degraded;
	// a lexical-only search never touches it.
	semantic := &stubSemantic{err: caseerr.BackendError("vector store unreachable", nil)}
	eng := testEngine(t, semantic)
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	resp, err := eng.Search(context.Background(), "petition dismissed", Options{LexicalOnly: true})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "j1_chunk_0", resp.Results[0].ChunkID)
}

func TestEngineDegradesOnBackendUnavailable(t *testing.T) {
	semantic := &stubSemantic{err: caseerr.BackendError("vector store unreachable", nil)}
	eng := testEngine(t, semantic)
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	resp, err := eng.Search(context.Background(), "petition dismissed", Options{})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	require.NotEmpty(t, resp.Results)
}

func TestEngineDanglingSemanticHitIsFatal(t *testing.T) {
	semantic := &stubSemantic{hits: []store.SemanticHit{
		{ChunkID: "stale_chunk_7", Score: 0.9},
	}}
	eng := testEngine(t, semantic)
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	_, err := eng.Search(context.Background(), "court", Options{})
	require.Error(t, err)
	assert.Equal(t, caseerr.ErrCodeConsistency, caseerr.GetCode(err))
}

func TestEngineRebuildSwapsCorpus(t *testing.T) {
	eng := testEngine(t, &stubSemantic{})
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))
	assert.Equal(t, 3, eng.CorpusSize())

	replacement := []store.Chunk{
		{ChunkID: "j2_chunk_0", Text: "bail granted subject to conditions", Section: store.SectionHolding, CaseTitle: "C v. D"},
	}
	require.NoError(t, eng.Build(context.Background(), replacement))
	assert.Equal(t, 1, eng.CorpusSize())

	resp, err := eng.Search(context.Background(), "bail granted", Options{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "j2_chunk_0", resp.Results[0].ChunkID)

	// Failed rebuilds leave the published snapshot untouched.
	require.Error(t, eng.Build(context.Background(), nil))
	assert.Equal(t, 1, eng.CorpusSize())
}

func TestEngineRebuildIsIdempotent(t *testing.T) {
	eng := testEngine(t, &stubSemantic{})
	corpus := courtOrderCorpus()

	require.NoError(t, eng.Build(context.Background(), corpus))
	first, err := eng.Search(context.Background(), "court order", Options{TopK: 3})
	require.NoError(t, err)

	require.NoError(t, eng.Build(context.Background(), corpus))
	second, err := eng.Search(context.Background(), "court order", Options{TopK: 3})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngineHydratedResultShape(t *testing.T) {
	eng := testEngine(t, &stubSemantic{})
	require.NoError(t, eng.Build(context.Background(), courtOrderCorpus()))

	resp, err := eng.Search(context.Background(), "appeal allowed", Options{TopK: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, "j1_chunk_2", r.ChunkID)
	assert.Equal(t, "final order: appeal allowed", r.TextPreview)
	assert.Equal(t, string(store.SectionHolding), r.Section)
	assert.Equal(t, "A v. B", r.CaseTitle)
	assert.Greater(t, r.Score, 0.0)
	assert.LessOrEqual(t, r.Score, 1.0)
}
