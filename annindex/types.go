// Package annindex is a narrow, synchronous client over an external vector
// index. No repository in the retrieved pack imports a
// named Qdrant Go client — confirmed against other_examples' Qdrant-using
// snippets, which all talk to it through a thin store wrapper of their own —
// so this client talks Qdrant's REST API directly over net/http, per
// DESIGN.md's standard-library justification #3.
package annindex

// Point is one vector entry to upsert: a dense positive point id, its
// vector, and an opaque payload carried alongside it.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload map[string]any
}

// Hit is one search result, ordered by descending Score.
type Hit struct {
	PointID uint64
	Score   float32
	Payload map[string]any
}

// CollectionInfo summarizes one collection for list_collections.
type CollectionInfo struct {
	Name        string
	VectorSize  int
	Distance    string
	PointsCount uint64
	Status      string
}
