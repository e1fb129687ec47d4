package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caseerr "github.com/caselens/caselens/internal/errors"
)

func corpusChunk(id, text string) Chunk {
	return Chunk{ChunkID: id, Text: text, Section: SectionGeneral, CaseTitle: "State v. Sharma"}
}

func TestBuildLexicalIndex_EmptyCorpusFails(t *testing.T) {
	_, err := BuildLexicalIndex(nil, LexicalParams{})
	require.Error(t, err)
	assert.Equal(t, caseerr.ErrCodeEmptyCorpus, caseerr.GetCode(err))
	assert.True(t, caseerr.IsFatal(err))
}

func TestLexicalSearch_EmptyQueryReturnsNothing(t *testing.T) {
	idx, err := BuildLexicalIndex([]Chunk{corpusChunk("c1", "the court granted bail")}, LexicalParams{})
	require.NoError(t, err)

	assert.Empty(t, idx.Search("", 5))
	assert.Empty(t, idx.Search("   \t\n", 5))
}

func TestLexicalSearch_RanksMatchingChunkFirst(t *testing.T) {
	chunks := []Chunk{
		corpusChunk("c1", "the appellant filed an appeal against conviction"),
		corpusChunk("c2", "anticipatory bail was granted under section 438"),
		corpusChunk("c3", "the property dispute concerned ancestral land"),
	}
	idx, err := BuildLexicalIndex(chunks, LexicalParams{})
	require.NoError(t, err)

	results := idx.Search("anticipatory bail", 3)
	require.Len(t, results, 3)
	assert.Equal(t, "c2", results[0].ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestLexicalSearch_Deterministic(t *testing.T) {
	chunks := []Chunk{
		corpusChunk("c1", "the court held the order was valid"),
		corpusChunk("c2", "the tribunal order was set aside"),
		corpusChunk("c3", "costs were awarded to the respondent"),
	}
	idx, err := BuildLexicalIndex(chunks, LexicalParams{})
	require.NoError(t, err)

	first := idx.Search("court order", 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, idx.Search("court order", 3))
	}
}

func TestLexicalSearch_TiesKeepInsertionOrder(t *testing.T) {
	// Identical documents score identically; insertion order decides.
	chunks := []Chunk{
		corpusChunk("c1", "bail granted"),
		corpusChunk("c2", "bail granted"),
		corpusChunk("c3", "bail granted"),
	}
	idx, err := BuildLexicalIndex(chunks, LexicalParams{})
	require.NoError(t, err)

	results := idx.Search("bail", 3)
	require.Len(t, results, 3)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "c2", results[1].ChunkID)
	assert.Equal(t, "c3", results[2].ChunkID)
}

func TestLexicalSearch_ZeroScoreChunksFillTopK(t *testing.T) {
	// Only one chunk matches the query; the rest of the top-k is filled
	// with zero-scoring chunks in corpus order.
	chunks := []Chunk{
		corpusChunk("c1", "land acquisition compensation"),
		corpusChunk("c2", "writ of habeas corpus"),
		corpusChunk("c3", "arbitration clause enforcement"),
	}
	idx, err := BuildLexicalIndex(chunks, LexicalParams{})
	require.NoError(t, err)

	results := idx.Search("habeas", 3)
	require.Len(t, results, 3)
	assert.Equal(t, "c2", results[0].ChunkID)
	assert.Greater(t, results[0].Score, 0.0)
	assert.Equal(t, "c1", results[1].ChunkID)
	assert.Equal(t, 0.0, results[1].Score)
	assert.Equal(t, "c3", results[2].ChunkID)
	assert.Equal(t, 0.0, results[2].Score)
}

func TestLexicalSearch_TopKBoundedByCorpus(t *testing.T) {
	idx, err := BuildLexicalIndex([]Chunk{
		corpusChunk("c1", "limitation period expired"),
		corpusChunk("c2", "delay condoned"),
	}, LexicalParams{})
	require.NoError(t, err)

	assert.Len(t, idx.Search("delay", 10), 2)
	assert.Empty(t, idx.Search("delay", 0))
}

func TestLexicalSearch_CommonTermStillContributes(t *testing.T) {
	// "the" appears in every chunk, so its raw IDF is negative. The
	// epsilon floor keeps it a small positive contribution instead of
	// penalizing chunks that contain it.
	chunks := []Chunk{
		corpusChunk("c1", "the the the court"),
		corpusChunk("c2", "the court order"),
		corpusChunk("c3", "the judgment"),
	}
	idx, err := BuildLexicalIndex(chunks, LexicalParams{})
	require.NoError(t, err)

	results := idx.Search("the", 3)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestLexicalSearch_UnknownTermsIgnored(t *testing.T) {
	idx, err := BuildLexicalIndex([]Chunk{
		corpusChunk("c1", "specific performance of contract"),
	}, LexicalParams{})
	require.NoError(t, err)

	results := idx.Search("zzzqqq", 1)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
}
