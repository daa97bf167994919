package embedder

import (
	"context"
	"encoding/binary"
	"math"
	"regexp"
	"strings"

	"github.com/minio/highwayhash"
)

// localHashKey reuses inspector/graph/hash.go's highwayhash key so the
// deterministic embedder inherits the same hashing primitive the module
// already depends on, rather than reaching for a new one.
var localHashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

const defaultLocalDim = 384

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// LocalEmbedder is a zero-network, fully deterministic embedder built on the
// classic hashing trick: each token is hashed into one of d buckets with a
// sign derived from a second hash bit, and the resulting vector is
// L2-normalized. It exists because the retrieved pack ships no embedding
// model to wrap, and the embedding-stability property requires a
// default that needs no external service.
type LocalEmbedder struct {
	dim int
}

func NewLocalEmbedder(dim int) *LocalEmbedder {
	if dim <= 0 {
		dim = defaultLocalDim
	}
	return &LocalEmbedder{dim: dim}
}

func (e *LocalEmbedder) Dim() int          { return e.dim }
func (e *LocalEmbedder) ModelName() string { return "local-hashing-trick-v1" }

func (e *LocalEmbedder) Embed(_ context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = e.embedOne(doc)
	}
	return out, nil
}

func (e *LocalEmbedder) embedOne(doc string) []float32 {
	vec := make([]float64, e.dim)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(doc), -1) {
		h := hashToken(token)
		bucket := int(h % uint64(e.dim))
		if h&(1<<63) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	result := make([]float32, e.dim)
	if norm == 0 {
		return result
	}
	for i, v := range vec {
		result[i] = float32(v / norm)
	}
	return result
}

func hashToken(token string) uint64 {
	h, err := highwayhash.New64(localHashKey)
	if err != nil {
		// highwayhash.New64 only fails on a malformed key; localHashKey is a
		// fixed 32-byte constant, so this path is unreachable in practice.
		return binary.BigEndian.Uint64([]byte(token + "........")[:8])
	}
	_, _ = h.Write([]byte(token))
	return h.Sum64()
}
