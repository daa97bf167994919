// Package embedder turns graph nodes into documents and documents into
// fixed-width dense vectors. Document assembly is
// grounded on inspector/graph/document.go's Document/chunking model; the
// deterministic local embedder reuses inspector/graph/hash.go's highwayhash
// key the same way, generalized from a content-hash into a hashing-trick
// feature embedding.
package embedder

import "context"

// Embedder is the contract every embedding backend implements: embed a
// batch of documents in one call, preserving row order.
type Embedder interface {
	// Embed returns one unit-L2-normalized vector per document, in the same
	// order as docs; a document whose raw vector is all zeros (such as one
	// with no tokens) yields the zero vector.
	Embed(ctx context.Context, docs []string) ([][]float32, error)
	// Dim is the fixed output width d.
	Dim() int
	// ModelName identifies the backend for the index journal.
	ModelName() string
}
