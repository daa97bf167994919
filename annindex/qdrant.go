package annindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viant/coderag/errs"
)

// Client is a thin REST client over a Qdrant instance implementing the
// collection/upsert/search/scroll operation set the query engine needs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *retryLimiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    newRetryLimiter(),
	}
}

// EnsureCollection creates (or, if recreate, drops and recreates) a
// collection with the given vector dimension and cosine distance.
func (c *Client) EnsureCollection(ctx context.Context, name string, dim int, recreate bool) error {
	if recreate {
		if err := c.DeleteCollection(ctx, name); err != nil {
			return err
		}
	}

	body := map[string]any{
		"vectors": map[string]any{"size": dim, "distance": "Cosine"},
	}
	return c.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(name), body, nil)
}

// DeleteCollection drops a collection if it exists; a missing collection is
// not an error.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(name), nil, nil)
	if err != nil && errs.KindOf(err) == errs.NotFound {
		return nil
	}
	return err
}

// Upsert writes points idempotently on point_id, batching internally, and
// returns the number of points written.
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) (int, error) {
	const batchSize = 128
	written := 0
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		wirePoints := make([]map[string]any, len(batch))
		for i, p := range batch {
			wirePoints[i] = map[string]any{"id": p.ID, "vector": p.Vector, "payload": p.Payload}
		}

		if err := c.retry(ctx, func() error {
			return c.do(ctx, http.MethodPut, "/collections/"+url.PathEscape(collection)+"/points?wait=true",
				map[string]any{"points": wirePoints}, nil)
		}); err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

// Search returns the top-k nearest points by cosine similarity, ordered by
// descending score.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, k int) ([]Hit, error) {
	var resp struct {
		Result []struct {
			ID      uint64         `json:"id"`
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
		Status string `json:"status"`
	}

	err := c.retry(ctx, func() error {
		return c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(collection)+"/points/search",
			map[string]any{"vector": vector, "limit": k, "with_payload": true}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == "building" {
		return nil, errs.New(errs.IndexNotReady, "collection "+collection+" is still building its ANN structure")
	}

	hits := make([]Hit, len(resp.Result))
	for i, r := range resp.Result {
		hits[i] = Hit{PointID: r.ID, Score: r.Score, Payload: r.Payload}
	}
	return hits, nil
}

// Scroll lists every point's payload in a collection, the capability the
// query engine's keyword-scan fallback reads over when the index is not yet
// ready.
func (c *Client) Scroll(ctx context.Context, collection string, limit int) ([]Hit, error) {
	var resp struct {
		Result struct {
			Points []struct {
				ID      uint64         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}
	err := c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(collection)+"/points/scroll",
		map[string]any{"limit": limit, "with_payload": true}, &resp)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(resp.Result.Points))
	for i, p := range resp.Result.Points {
		hits[i] = Hit{PointID: p.ID, Payload: p.Payload}
	}
	return hits, nil
}

// Count returns the number of points currently stored in a collection.
func (c *Client) Count(ctx context.Context, collection string) (uint64, error) {
	var resp struct {
		Result struct {
			PointsCount uint64 `json:"points_count"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(collection), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Result.PointsCount, nil
}

// ListCollections summarizes external index state for the list_collections
// operation.
func (c *Client) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	var resp struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/collections", nil, &resp); err != nil {
		return nil, err
	}

	infos := make([]CollectionInfo, 0, len(resp.Result.Collections))
	for _, col := range resp.Result.Collections {
		count, err := c.Count(ctx, col.Name)
		if err != nil {
			count = 0
		}
		infos = append(infos, CollectionInfo{Name: col.Name, PointsCount: count})
	}
	return infos, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody any, respBody any) error {
	var body *bytes.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return errs.Wrap(errs.Internal, err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errs.Wrap(errs.Internal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(errs.IndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errs.New(errs.NotFound, fmt.Sprintf("qdrant: %s %s: not found", method, path))
	}
	if resp.StatusCode >= 500 {
		return errs.New(errs.IndexUnavailable, fmt.Sprintf("qdrant: %s %s: status %d", method, path, resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return errs.New(errs.InvalidInput, fmt.Sprintf("qdrant: %s %s: status %d", method, path, resp.StatusCode))
	}

	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return errs.Wrap(errs.Internal, err)
	}
	return nil
}
