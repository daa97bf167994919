package embedder

import (
	"context"
	"fmt"
	"math"

	"github.com/openai/openai-go/v3"
)

const openAIDim = 1536

// OpenAIEmbedder is the real, model-backed embedder, grounded on the
// openai.NewClient()/Chat.Completions.New call shape already used for chat
// completions elsewhere in the pack (rohankatakam-coderisk's
// internal/agent/llm_client.go), generalized here to the Embeddings
// endpoint. It reads its API key from OPENAI_API_KEY via the client's own
// default option resolution.
type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(model string) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(),
		model:  openai.EmbeddingModel(model),
	}
}

func (e *OpenAIEmbedder) Dim() int          { return openAIDim }
func (e *OpenAIEmbedder) ModelName() string { return string(e.model) }

func (e *OpenAIEmbedder) Embed(ctx context.Context, docs []string) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: docs},
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: openai embeddings request: %w", err)
	}
	if len(resp.Data) != len(docs) {
		return nil, fmt.Errorf("embedder: openai returned %d embeddings for %d documents", len(resp.Data), len(docs))
	}

	out := make([][]float32, len(docs))
	for i, d := range resp.Data {
		out[i] = normalize(d.Embedding)
	}
	return out, nil
}

// normalize enforces the unit-L2-normalized contract even
// when the upstream model already returns normalized vectors, so the
// property holds regardless of provider behavior.
func normalize(v []float64) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}
