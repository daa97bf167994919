package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/coderag/annindex"
	"github.com/viant/coderag/embedder"
	"github.com/viant/coderag/graphmodel"
	"github.com/viant/coderag/graphstore"
)

func twoNodeGraph() *graphstore.Graph {
	a := &graphmodel.Node{ID: "function:a:a.py:1", Kind: graphmodel.KindFunction, Name: "a", RelPath: "a.py", StartLine: 1, EndLine: 1, Code: "def a(): b()"}
	b := &graphmodel.Node{ID: "function:b:b.py:1", Kind: graphmodel.KindFunction, Name: "b", RelPath: "b.py", StartLine: 1, EndLine: 1, Code: "def b(): pass"}
	e := &graphmodel.Edge{Source: a.ID, Target: b.ID, Type: graphmodel.EdgeCall}
	return graphstore.New([]*graphmodel.Node{a, b}, []*graphmodel.Edge{e})
}

func TestSearch_MapsHitsInScoreOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"result": []map[string]any{
				{"id": 2, "score": 0.5, "payload": map[string]any{"node_id": "function:b:b.py:1", "snippet": "def b(): pass", "file": "b.py", "start_line": 1}},
				{"id": 1, "score": 0.9, "payload": map[string]any{"node_id": "function:a:a.py:1", "snippet": "def a(): b()", "file": "a.py", "start_line": 1}},
			},
		})
	}))
	defer srv.Close()

	eng := New(embedder.NewLocalEmbedder(16), annindex.NewClient(srv.URL), twoNodeGraph(), nil)
	hits, err := eng.Search(context.Background(), "b", 5, "code")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, "function:a:a.py:1", hits[0].NodeID)
}

func TestSearch_KeywordFallbackOnIndexNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections/code/points/search":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "building", "result": []map[string]any{}})
		case "/collections/code/points/scroll":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"points": []map[string]any{
						{"id": 1, "payload": map[string]any{"node_id": "function:a:a.py:1", "snippet": "def a(): b()", "doc": "", "file": "a.py", "start_line": 1}},
						{"id": 2, "payload": map[string]any{"node_id": "function:b:b.py:1", "snippet": "def b(): pass", "doc": "", "file": "b.py", "start_line": 1}},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	eng := New(embedder.NewLocalEmbedder(16), annindex.NewClient(srv.URL), twoNodeGraph(), nil)
	hits, err := eng.Search(context.Background(), "b()", 5, "code")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, float32(0))
		assert.LessOrEqual(t, h.Score, float32(1))
	}
	// Both snippets contain "b()" and score 0.8; the tie keeps scroll order.
	assert.Equal(t, "function:a:a.py:1", hits[0].NodeID)
}

func TestAnalyze_ConnectedHitsYieldTwoNodePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"result": []map[string]any{
				{"id": 1, "score": 0.9, "payload": map[string]any{"node_id": "function:a:a.py:1", "snippet": "def a(): b()", "file": "a.py", "start_line": 1}},
				{"id": 2, "score": 0.8, "payload": map[string]any{"node_id": "function:b:b.py:1", "snippet": "def b(): pass", "file": "b.py", "start_line": 1}},
			},
		})
	}))
	defer srv.Close()

	eng := New(embedder.NewLocalEmbedder(16), annindex.NewClient(srv.URL), twoNodeGraph(), nil)
	answer, err := eng.Analyze(context.Background(), "a calls b", 5, "code")
	require.NoError(t, err)
	assert.Equal(t, []string{"function:a:a.py:1", "function:b:b.py:1"}, answer.AnswerPath)
	require.Len(t, answer.PathEdges, 1)
	assert.Equal(t, graphmodel.EdgeCall, answer.PathEdges[0].Type)
	assert.Len(t, answer.Snippets, 2)
	assert.Len(t, answer.Summary.NodeRefs, 2)
	assert.NotEmpty(t, answer.Summary.Caveats)
}

func TestAnalyze_NoHitsReturnsEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "result": []map[string]any{}})
	}))
	defer srv.Close()

	eng := New(embedder.NewLocalEmbedder(16), annindex.NewClient(srv.URL), twoNodeGraph(), nil)
	answer, err := eng.Analyze(context.Background(), "nothing matches", 5, "code")
	require.NoError(t, err)
	assert.Empty(t, answer.AnswerPath)
	assert.NotEmpty(t, answer.Summary.Caveats)
}
