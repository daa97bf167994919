package annindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCollectionAndUpsertAndSearch(t *testing.T) {
	var created bool
	var upserted []map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/code":
			created = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/code/points":
			var body struct {
				Points []map[string]any `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			upserted = append(upserted, body.Points...)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/code/points/search":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "ok",
				"result": []map[string]any{
					{"id": 1, "score": 0.9, "payload": map[string]any{"node_id": "a"}},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	require.NoError(t, c.EnsureCollection(ctx, "code", 8, true))
	assert.True(t, created)

	written, err := c.Upsert(ctx, "code", []Point{
		{ID: 1, Vector: []float32{0.1, 0.2}, Payload: map[string]any{"node_id": "a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	require.Len(t, upserted, 1)

	hits, err := c.Search(ctx, "code", []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uint64(1), hits[0].PointID)
	assert.InDelta(t, 0.9, hits[0].Score, 1e-6)
}

func TestSearch_IndexNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "building", "result": []map[string]any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "code", []float32{0.1}, 5)
	require.Error(t, err)
}
