package graphstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/coderag/graphmodel"
)

func sampleNodes() []*graphmodel.Node {
	return []*graphmodel.Node{
		{ID: "a", Kind: graphmodel.KindFunction, Name: "a", RelPath: "a.py", StartLine: 1, EndLine: 1},
		{ID: "b", Kind: graphmodel.KindFunction, Name: "b", RelPath: "b.py", StartLine: 1, EndLine: 1},
		{ID: "c", Kind: graphmodel.KindFunction, Name: "c", RelPath: "c.py", StartLine: 1, EndLine: 1},
	}
}

func TestNew_CountsAndNeighbors(t *testing.T) {
	edges := []*graphmodel.Edge{
		{Source: "a", Target: "b", Type: graphmodel.EdgeCall},
		{Source: "b", Target: "c", Type: graphmodel.EdgeCall},
	}
	g := New(sampleNodes(), edges)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"b"}, g.Neighbors("a", Out))
	assert.Equal(t, []string{"a"}, g.Neighbors("b", In))
}

func TestShortestPath_DirectCall(t *testing.T) {
	edges := []*graphmodel.Edge{{Source: "a", Target: "b", Type: graphmodel.EdgeCall}}
	g := New(sampleNodes(), edges)

	path, pathEdges, ok := g.ShortestPath([]string{"a"}, []string{"b"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, path)
	require.Len(t, pathEdges, 1)
	assert.Equal(t, "a", pathEdges[0].Source)
	assert.Equal(t, "b", pathEdges[0].Target)
}

func TestShortestPath_SingleHitIsTrivial(t *testing.T) {
	g := New(sampleNodes(), nil)
	path, pathEdges, ok := g.ShortestPath([]string{"a"}, []string{"a"})
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, path)
	assert.Empty(t, pathEdges)
}

func TestShortestPath_NoConnection(t *testing.T) {
	g := New(sampleNodes(), nil)
	_, _, ok := g.ShortestPath([]string{"a"}, []string{"b"})
	assert.False(t, ok)
}

func TestShortestPath_UndirectedProjection(t *testing.T) {
	// b -> a is a call edge; shortest_path(sources={a}, sinks={b}) must still
	// find the path by ignoring direction for reachability.
	edges := []*graphmodel.Edge{{Source: "b", Target: "a", Type: graphmodel.EdgeCall}}
	g := New(sampleNodes(), edges)

	path, _, ok := g.ShortestPath([]string{"a"}, []string{"b"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, path)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	edges := []*graphmodel.Edge{{Source: "a", Target: "b", Type: graphmodel.EdgeCall, Ambiguous: true}}
	g := New(sampleNodes(), edges)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, g.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, g.NodeCount(), loaded.NodeCount())
	assert.Equal(t, g.EdgeCount(), loaded.EdgeCount())

	a := loaded.Node("a")
	require.NotNil(t, a)
	assert.Equal(t, "a.py", a.RelPath)

	edgesOut := loaded.Edges()
	require.Len(t, edgesOut, 1)
	assert.True(t, edgesOut[0].Ambiguous)
}
