package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedder_Stability(t *testing.T) {
	e := NewLocalEmbedder(0)
	v1, err := e.Embed(context.Background(), []string{"func hello() { return }"})
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), []string{"func hello() { return }"})
	require.NoError(t, err)

	require.Equal(t, len(v1[0]), len(v2[0]))
	for i := range v1[0] {
		assert.InDelta(t, v1[0][i], v2[0][i], 1e-6)
	}
}

func TestLocalEmbedder_UnitNormalized(t *testing.T) {
	e := NewLocalEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"alpha beta gamma delta"})
	require.NoError(t, err)

	var sumSq float64
	for _, v := range vecs[0] {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-5)
}

func TestLocalEmbedder_PreservesRowOrder(t *testing.T) {
	e := NewLocalEmbedder(32)
	docs := []string{"first document", "second document", "third document"}
	vecs, err := e.Embed(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.NotEqual(t, vecs[0], vecs[1])
	for i, doc := range docs {
		single, err := e.Embed(context.Background(), []string{doc})
		require.NoError(t, err)
		assert.Equal(t, single[0], vecs[i])
	}
}

func TestLocalEmbedder_EmptyDocumentYieldsZeroVector(t *testing.T) {
	e := NewLocalEmbedder(16)
	vecs, err := e.Embed(context.Background(), []string{""})
	require.NoError(t, err)
	for _, v := range vecs[0] {
		assert.Equal(t, float32(0), v)
	}
}
