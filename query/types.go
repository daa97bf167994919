// Package query implements the semantic query path: embed a question,
// search the ANN index (or degrade to a keyword scan when it isn't ready),
// and for analyze assemble an explanatory answer path over the program
// graph. Grounded on analyzer/*.go's query/answer-shaping style,
// generalized from viant-linager's single-collection search loop into the
// search+analyze pair.
package query

import "github.com/viant/coderag/graphmodel"

// Payload key names written by the indexer and read back here. The index
// pipelines in cmd/coderag and cmd/coderag-mcp write these keys (as string
// literals) on every point they upsert.
const (
	PayloadNodeID = "node_id"
	PayloadSnippet = "snippet"
	PayloadDoc     = "doc"
	PayloadFile    = "file"
	PayloadStart   = "start_line"
)

// Hit is one ranked search result.
// The wire schema is exactly node_id/score/snippet/file/start_line; docValue
// carries the payload's doc text only long enough for keyword-scan scoring
// and is deliberately excluded from JSON.
type Hit struct {
	NodeID    string  `json:"node_id"`
	Score     float32 `json:"score"`
	Snippet   string  `json:"snippet"`
	File      string  `json:"file"`
	StartLine int     `json:"start_line"`
	docValue  string
}

func (h Hit) doc() string { return h.docValue }

// Snippet is one path node's excerpt, assembled from C3 during analyze.
type Snippet struct {
	NodeID    string `json:"node_id"`
	Code      string `json:"code"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Doc       string `json:"doc"`
}

// PathEdge is one edge of answer_path, reported with its original direction
// reported with their original direction, not the undirected projection
// used to find the path.
type PathEdge struct {
	Source string            `json:"source"`
	Target string            `json:"target"`
	Type   graphmodel.EdgeType `json:"type"`
}

// NodeRef is one entry of Summary.node_refs.
type NodeRef struct {
	NodeID      string `json:"node_id"`
	ExcerptLine string `json:"excerpt_line"`
}

// Summary is the structured answer stub the engine always emits, even when
// the freeform external summarizer is unreachable.
type Summary struct {
	OneLiner      string    `json:"one_liner"`
	Steps         []string  `json:"steps"`
	InputsOutputs string    `json:"inputs_outputs"`
	Caveats       []string  `json:"caveats"`
	NodeRefs      []NodeRef `json:"node_refs"`
}

// Answer is the full analyze response.
type Answer struct {
	AnswerPath []string   `json:"answer_path"`
	PathEdges  []PathEdge `json:"path_edges"`
	Snippets   []Snippet  `json:"snippets"`
	Summary    Summary    `json:"summary"`
}
