package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestStaticEmbedder_Deterministic(t *testing.T) {
	e := NewStaticEmbedder(384)
	defer e.Close()
	ctx := context.Background()

	a, err := e.Embed(ctx, "anticipatory bail under section 438")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "anticipatory bail under section 438")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestStaticEmbedder_UnitLength(t *testing.T) {
	e := NewStaticEmbedder(384)
	defer e.Close()

	vec, err := e.Embed(context.Background(), "the court dismissed the appeal with costs")
	require.NoError(t, err)
	require.Len(t, vec, 384)
	assert.InDelta(t, 1.0, vectorNorm(vec), 1e-5)
}

func TestStaticEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := NewStaticEmbedder(384)
	defer e.Close()

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, vec, 384)
	assert.Equal(t, 0.0, vectorNorm(vec))
}

func TestStaticEmbedder_SimilarTextCloserThanUnrelated(t *testing.T) {
	e := NewStaticEmbedder(384)
	defer e.Close()
	ctx := context.Background()

	base, err := e.Embed(ctx, "bail application under section 438 of the code")
	require.NoError(t, err)
	similar, err := e.Embed(ctx, "application for bail under section 438")
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, "transfer of agricultural land revenue records")
	require.NoError(t, err)

	dot := func(a, b []float32) float64 {
		var s float64
		for i := range a {
			s += float64(a[i]) * float64(b[i])
		}
		return s
	}

	assert.Greater(t, dot(base, similar), dot(base, unrelated))
}

func TestStaticEmbedder_EmbedBatch(t *testing.T) {
	e := NewStaticEmbedder(64)
	defer e.Close()
	ctx := context.Background()

	vecs, err := e.EmbedBatch(ctx, []string{"first passage", "second passage"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	single, err := e.Embed(ctx, "first passage")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[0])

	empty, err := e.EmbedBatch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStaticEmbedder_ClosedRejectsEmbed(t *testing.T) {
	e := NewStaticEmbedder(64)
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "text")
	assert.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}

func TestStaticEmbedder_DefaultDimensions(t *testing.T) {
	e := NewStaticEmbedder(0)
	defer e.Close()
	assert.Equal(t, DefaultStaticDimensions, e.Dimensions())
	assert.Equal(t, "static", e.ModelName())
}
