package graphstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/viant/coderag/graphmodel"
)

const schemaVersion = "1.0"

// nodeJSON is graph.json's node shape, whose field names
// deliberately diverge from graphmodel.Node's Go-side names: "file" instead
// of "relpath", plus a "label" field downstream consumers key on.
type nodeJSON struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Code        string `json:"code"`
	Doc         string `json:"doc"`
	Language    string `json:"language"`
	LOC         int    `json:"loc"`
	Cyclomatic  int    `json:"cyclomatic"`
	NumCallsIn  int    `json:"num_calls_in"`
	NumCallsOut int    `json:"num_calls_out"`
}

type edgeJSON struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Type      string `json:"type"`
	Ambiguous bool   `json:"ambiguous"`
}

type metadataJSON struct {
	NodeCount     int    `json:"node_count"`
	EdgeCount     int    `json:"edge_count"`
	GeneratedBy   string `json:"generated_by"`
	SchemaVersion string `json:"schema_version"`
}

type graphJSON struct {
	Nodes    []nodeJSON   `json:"nodes"`
	Edges    []edgeJSON   `json:"edges"`
	Metadata metadataJSON `json:"metadata"`
}

func toNodeJSON(n *graphmodel.Node) nodeJSON {
	return nodeJSON{
		ID: n.ID, Label: n.Name, Name: n.Name, Kind: string(n.Kind), File: n.RelPath,
		StartLine: n.StartLine, EndLine: n.EndLine, Code: n.Code, Doc: n.Doc,
		Language: n.Language, LOC: n.LOC, Cyclomatic: n.Cyclomatic,
		NumCallsIn: n.NumCallsIn, NumCallsOut: n.NumCallsOut,
	}
}

func fromNodeJSON(j nodeJSON) *graphmodel.Node {
	return &graphmodel.Node{
		ID: j.ID, Kind: graphmodel.Kind(j.Kind), Name: j.Name, RelPath: j.File,
		StartLine: j.StartLine, EndLine: j.EndLine, Code: j.Code, Doc: j.Doc,
		Language: j.Language, LOC: j.LOC, Cyclomatic: j.Cyclomatic,
		NumCallsIn: j.NumCallsIn, NumCallsOut: j.NumCallsOut,
	}
}

func toEdgeJSON(e *graphmodel.Edge) edgeJSON {
	return edgeJSON{Source: e.Source, Target: e.Target, Type: string(e.Type), Ambiguous: e.Ambiguous}
}

func fromEdgeJSON(j edgeJSON) *graphmodel.Edge {
	return &graphmodel.Edge{Source: j.Source, Target: j.Target, Type: graphmodel.EdgeType(j.Type), Ambiguous: j.Ambiguous}
}

// pathLocks serializes concurrent Save calls against the same file path,
// the per-path mutual exclusion graph writes require.
var pathLocks sync.Map // map[string]*sync.Mutex

func lockFor(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	actual, _ := pathLocks.LoadOrStore(abs, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Save serializes the graph to path as graph.json, writing to a temp file in
// the same directory and renaming atomically (the write-to-temp + rename
// policy applied here too since graph.json is the same kind of durable
// handoff artifact).
func (g *Graph) Save(path string) error {
	mu := lockFor(path)
	mu.Lock()
	defer mu.Unlock()

	g.mu.Lock()
	doc := graphJSON{
		Metadata: metadataJSON{GeneratedBy: "coderag", SchemaVersion: schemaVersion},
	}
	for _, id := range g.order {
		doc.Nodes = append(doc.Nodes, toNodeJSON(g.byID[id]))
	}
	for _, id := range g.order {
		for _, e := range g.succ[id] {
			doc.Edges = append(doc.Edges, toEdgeJSON(e))
		}
	}
	doc.Metadata.NodeCount = len(doc.Nodes)
	doc.Metadata.EdgeCount = len(doc.Edges)
	g.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("graphstore: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".graph-*.json.tmp")
	if err != nil {
		return fmt.Errorf("graphstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("graphstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("graphstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("graphstore: rename temp file: %w", err)
	}
	return nil
}

// Load reads graph.json from path and constructs a Graph. Round-tripping
// Save then Load must reproduce the same graph structurally.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graphstore: read %s: %w", path, err)
	}

	var doc graphJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("graphstore: unmarshal %s: %w", path, err)
	}

	nodes := make([]*graphmodel.Node, 0, len(doc.Nodes))
	for _, nj := range doc.Nodes {
		nodes = append(nodes, fromNodeJSON(nj))
	}
	edges := make([]*graphmodel.Edge, 0, len(doc.Edges))
	for _, ej := range doc.Edges {
		edges = append(edges, fromEdgeJSON(ej))
	}

	return New(nodes, edges), nil
}
