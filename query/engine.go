package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/coderag/annindex"
	"github.com/viant/coderag/embedder"
	"github.com/viant/coderag/errs"
	"github.com/viant/coderag/graphstore"
)

// caveats are the fixed static-analysis disclaimers every Summary carries
// (fixed disclaimers about static analysis).
var caveats = []string{
	"Derived from static analysis only; dynamic dispatch and reflection are not resolved.",
	"Edge resolution may mark calls ambiguous when more than one candidate matches by name.",
}

// scrollFanout bounds how many points the keyword-scan fallback pulls from
// C5's scroll capability before scoring locally.
const scrollFanout = 1000

// Engine binds the embedder, ANN index client, and program graph needed to
// answer search and analyze requests.
type Engine struct {
	Embedder   embedder.Embedder
	Index      *annindex.Client
	Graph      *graphstore.Graph
	Summarizer Summarizer
}

// New builds an Engine. Summarizer may be nil; analyze still always emits
// the structured Summary form.
func New(emb embedder.Embedder, idx *annindex.Client, graph *graphstore.Graph, summarizer Summarizer) *Engine {
	return &Engine{Embedder: emb, Index: idx, Graph: graph, Summarizer: summarizer}
}

// Search embeds query, asks C5 for the top-k nearest points, and maps them
// to Hits in non-increasing score order. When the index reports
// IndexNotReady it degrades to the frozen keyword-scan fallback.
func (e *Engine) Search(ctx context.Context, query string, k int, collection string) ([]Hit, error) {
	vecs, err := e.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, errs.Wrap(errs.EmbedFailed, err)
	}

	hits, err := e.Index.Search(ctx, collection, vecs[0], k)
	if err != nil {
		if errs.KindOf(err) == errs.IndexNotReady {
			return e.keywordScan(ctx, query, k, collection)
		}
		return nil, err
	}

	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		out = append(out, hitFromPayload(h.Payload, h.Score))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// keywordScan implements the frozen scoring rule: sum 0.8 if
// query is a substring of the snippet, 0.7 of the doc, 0.6 of the node id,
// 0.4 of the file path; return the top-k by that sum.
func (e *Engine) keywordScan(ctx context.Context, query string, k int, collection string) ([]Hit, error) {
	points, err := e.Index.Scroll(ctx, collection, scrollFanout)
	if err != nil {
		return nil, err
	}

	scored := make([]Hit, 0, len(points))
	for _, p := range points {
		hit := hitFromPayload(p.Payload, 0)
		hit.Score = keywordScore(query, hit)
		scored = append(scored, hit)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func keywordScore(query string, h Hit) float32 {
	if query == "" {
		return 0
	}
	var score float32
	if strings.Contains(h.Snippet, query) {
		score += 0.8
	}
	if strings.Contains(h.doc(), query) {
		score += 0.7
	}
	if strings.Contains(h.NodeID, query) {
		score += 0.6
	}
	if strings.Contains(h.File, query) {
		score += 0.4
	}
	return score
}

func hitFromPayload(payload map[string]any, score float32) Hit {
	h := Hit{Score: score}
	if v, ok := payload[PayloadNodeID].(string); ok {
		h.NodeID = v
	}
	if v, ok := payload[PayloadSnippet].(string); ok {
		h.Snippet = v
	}
	if v, ok := payload[PayloadFile].(string); ok {
		h.File = v
	}
	h.StartLine = payloadInt(payload, PayloadStart)
	h.docValue, _ = payload[PayloadDoc].(string)
	return h
}

func payloadInt(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// Analyze runs search, finds the minimum-hop answer path connecting hits
// over C3's undirected projection, and assembles a structured Answer
// Given the same graph, embedder, and index state, it
// returns byte-identical results for the same inputs.
func (e *Engine) Analyze(ctx context.Context, query string, k int, collection string) (*Answer, error) {
	hits, err := e.Search(ctx, query, k, collection)
	if err != nil {
		return nil, err
	}

	var hitIDs []string
	seen := map[string]bool{}
	for _, h := range hits {
		if e.Graph.Node(h.NodeID) != nil && !seen[h.NodeID] {
			seen[h.NodeID] = true
			hitIDs = append(hitIDs, h.NodeID)
		}
	}

	answer := &Answer{Summary: Summary{Caveats: caveats}}
	if len(hitIDs) == 0 {
		return answer, nil
	}

	// With several distinct hits the path must join two of them: each hit, in
	// sorted order, is a source against the others; only a shorter path wins.
	path, pathEdges, ok := e.Graph.ShortestPath(hitIDs, hitIDs)
	if len(hitIDs) > 1 {
		path, pathEdges, ok = nil, nil, false
		sorted := append([]string(nil), hitIDs...)
		sort.Strings(sorted)
		for i, src := range sorted {
			others := append(append([]string(nil), sorted[:i]...), sorted[i+1:]...)
			if p, pe, found := e.Graph.ShortestPath([]string{src}, others); found && (!ok || len(p) < len(path)) {
				path, pathEdges, ok = p, pe, true
			}
		}
	}
	if !ok {
		return answer, nil
	}

	answer.AnswerPath = path
	for _, pe := range pathEdges {
		answer.PathEdges = append(answer.PathEdges, PathEdge{Source: pe.Source, Target: pe.Target, Type: pe.Type})
	}

	snippets := make([]Snippet, 0, len(path))
	nodeRefs := make([]NodeRef, 0, len(path))
	steps := make([]string, 0, len(path))
	for _, id := range path {
		n := e.Graph.Node(id)
		if n == nil {
			continue
		}
		snippets = append(snippets, Snippet{
			NodeID: n.ID, Code: n.Code, File: n.RelPath,
			StartLine: n.StartLine, EndLine: n.EndLine, Doc: n.Doc,
		})
		nodeRefs = append(nodeRefs, NodeRef{NodeID: n.ID, ExcerptLine: firstNonBlankLine(n.Code)})
		steps = append(steps, n.Name)
	}
	answer.Snippets = snippets
	answer.Summary.NodeRefs = nodeRefs
	answer.Summary.Steps = steps
	answer.Summary.OneLiner = oneLiner(path, e.Graph)
	answer.Summary.InputsOutputs = inputsOutputs(path, e.Graph)

	if e.Summarizer != nil {
		if prose, err := e.Summarizer.Summarize(ctx, query, answer.Snippets); err == nil && prose != "" {
			answer.Summary.OneLiner = prose
		}
	}

	return answer, nil
}

func firstNonBlankLine(code string) string {
	for _, line := range strings.Split(code, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func oneLiner(path []string, g *graphstore.Graph) string {
	if len(path) == 1 {
		if n := g.Node(path[0]); n != nil {
			return n.Name + " considered in isolation; no connecting path to other hits was found."
		}
		return ""
	}
	first, last := g.Node(path[0]), g.Node(path[len(path)-1])
	if first == nil || last == nil {
		return ""
	}
	return first.Name + " reaches " + last.Name + " through " + strconv.Itoa(len(path)-2) + " intermediate node(s)."
}

func inputsOutputs(path []string, g *graphstore.Graph) string {
	first := g.Node(path[0])
	if first == nil {
		return ""
	}
	last := g.Node(path[len(path)-1])
	if last == nil || last == first {
		return "Signature recovery from source text is not attempted; see " + first.Name + "'s code excerpt."
	}
	return "Signature recovery from source text is not attempted; see " + first.Name + " and " + last.Name + "'s code excerpts."
}
