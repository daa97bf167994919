// Package graphstore holds the parsed program graph in memory and persists
// it to graph.json. The in-memory shape follows
// analyzer/graph_exporter.go's id-keyed IRGraph, generalized from an export
// intermediate into the store of record: an id -> Node map plus ordered
// successor/predecessor adjacency lists, never in-language back-pointers
// between node records.
package graphstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/viant/coderag/graphmodel"
)

// Direction selects which adjacency list Neighbors walks.
type Direction int

const (
	Out Direction = iota
	In
)

// Graph is the authoritative in-memory program graph. It is safe for
// concurrent use: Save takes the exclusive lock, every read-only
// operation takes the shared lock. Load builds a fresh Graph and so needs
// no lock on an existing one.
type Graph struct {
	mu sync.RWMutex

	byID  map[string]*graphmodel.Node
	order []string // node ids in insertion order, for deterministic iteration

	succ map[string][]*graphmodel.Edge // keyed by edge.Source, insertion order
	pred map[string][]*graphmodel.Edge // keyed by edge.Target, insertion order
}

// New builds a Graph from parsed nodes and edges. Nodes are expected unique
// by id; edges are expected well-formed — New does not itself re-validate
// the parser's output.
func New(nodes []*graphmodel.Node, edges []*graphmodel.Edge) *Graph {
	g := &Graph{
		byID: make(map[string]*graphmodel.Node, len(nodes)),
		succ: make(map[string][]*graphmodel.Edge),
		pred: make(map[string][]*graphmodel.Edge),
	}
	for _, n := range nodes {
		if _, exists := g.byID[n.ID]; !exists {
			g.order = append(g.order, n.ID)
		}
		g.byID[n.ID] = n
	}
	for _, e := range edges {
		g.succ[e.Source] = append(g.succ[e.Source], e)
		g.pred[e.Target] = append(g.pred[e.Target], e)
	}
	return g
}

// Node returns the node with the given id, or nil if absent.
func (g *Graph) Node(id string) *graphmodel.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.byID[id]
}

// Nodes returns every node in insertion order. The returned slice is a copy
// of the index; callers must not mutate the Node values it points to.
func (g *Graph) Nodes() []*graphmodel.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*graphmodel.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id])
	}
	return out
}

// Edges returns every edge in the graph, successor-list order.
func (g *Graph) Edges() []*graphmodel.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*graphmodel.Edge
	for _, id := range g.order {
		out = append(out, g.succ[id]...)
	}
	return out
}

// NodeCount and EdgeCount back graph.json's metadata block.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byID)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, edges := range g.succ {
		count += len(edges)
	}
	return count
}

// Neighbors returns the ids reachable from id via edges in the given
// direction, in edge insertion order.
func (g *Graph) Neighbors(id string, dir Direction) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []*graphmodel.Edge
	if dir == Out {
		edges = g.succ[id]
	} else {
		edges = g.pred[id]
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		if dir == Out {
			out = append(out, e.Target)
		} else {
			out = append(out, e.Source)
		}
	}
	return out
}

// undirectedNeighbors returns every distinct node reachable from id by
// ignoring edge direction, sorted ascending so BFS exploration order is
// deterministic (needed for the lexicographic tie-break in ShortestPath).
func (g *Graph) undirectedNeighbors(id string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.succ[id] {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	for _, e := range g.pred[id] {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	sort.Strings(out)
	return out
}

var errNoPath = fmt.Errorf("graphstore: no path connects sources to sinks")

// ShortestPath finds the minimum-hop path, over the undirected projection of
// the graph, from any node in sources to any node in sinks. Ties are broken
// by lexicographically smallest node-id sequence. It returns
// (nil, nil, false) when no source connects to any sink.
func (g *Graph) ShortestPath(sources, sinks []string) ([]string, []*graphmodel.Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sinkSet := make(map[string]bool, len(sinks))
	for _, s := range sinks {
		sinkSet[s] = true
	}

	// Trivial zero-hop path: a node present in both sources and sinks.
	var common []string
	for _, s := range sources {
		if sinkSet[s] {
			common = append(common, s)
		}
	}
	if len(common) > 0 {
		sort.Strings(common)
		return []string{common[0]}, nil, true
	}

	sortedSources := append([]string(nil), sources...)
	sort.Strings(sortedSources)

	var bestPath []string
	for _, src := range sortedSources {
		if _, ok := g.byID[src]; !ok {
			continue
		}
		path := g.bfsNearestSink(src, sinkSet)
		if path == nil {
			continue
		}
		if bestPath == nil || betterPath(path, bestPath) {
			bestPath = path
		}
	}
	if bestPath == nil {
		return nil, nil, false
	}
	return bestPath, g.pathEdges(bestPath), true
}

// bfsNearestSink runs a single-source BFS over the undirected projection,
// exploring neighbors in sorted order so the first path found to any given
// node is also the lexicographically smallest shortest path to it. It
// returns the path to the lexicographically smallest nearest sink.
func (g *Graph) bfsNearestSink(src string, sinkSet map[string]bool) []string {
	parent := map[string]string{src: ""}
	visited := map[string]bool{src: true}
	level := []string{src}

	for len(level) > 0 {
		var reached []string
		for _, id := range level {
			if sinkSet[id] {
				reached = append(reached, id)
			}
		}
		if len(reached) > 0 {
			sort.Strings(reached)
			var best []string
			for _, sink := range reached {
				p := reconstructPath(parent, src, sink)
				if best == nil || betterPath(p, best) {
					best = p
				}
			}
			return best
		}

		var next []string
		for _, id := range level {
			for _, cand := range g.undirectedNeighbors(id) {
				if visited[cand] {
					continue
				}
				visited[cand] = true
				parent[cand] = id
				next = append(next, cand)
			}
		}
		level = next
	}
	return nil
}

func reconstructPath(parent map[string]string, src, dst string) []string {
	var rev []string
	for cur := dst; ; {
		rev = append(rev, cur)
		if cur == src {
			break
		}
		cur = parent[cur]
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// betterPath reports whether candidate should replace current under the
// tie-break: fewer hops first, then lexicographically smaller
// node-id sequence.
func betterPath(candidate, current []string) bool {
	if len(candidate) != len(current) {
		return len(candidate) < len(current)
	}
	for i := range candidate {
		if candidate[i] != current[i] {
			return candidate[i] < current[i]
		}
	}
	return false
}

// pathEdges reports one edge per consecutive pair on path, in whichever
// original direction connects them (the path itself is computed over the
// undirected projection; edges keep their own recorded direction/type).
func (g *Graph) pathEdges(path []string) []*graphmodel.Edge {
	var out []*graphmodel.Edge
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if e := firstEdgeBetween(g.succ[a], b); e != nil {
			out = append(out, e)
			continue
		}
		if e := firstEdgeBetween(g.succ[b], a); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func firstEdgeBetween(edges []*graphmodel.Edge, target string) *graphmodel.Edge {
	for _, e := range edges {
		if e.Target == target {
			return e
		}
	}
	return nil
}
