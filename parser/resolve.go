package parser

import (
	"path/filepath"

	"github.com/viant/coderag/graphmodel"
)

// resolver indexes assigned nodes by name, qualified-name+file, relpath and
// directory, so call/import references can be resolved to node ids. It
// generalizes the by-name map[string]int lookups used throughout
// inspector/graph/file.go (LookupFunction/LookupType) into multi-valued
// indexes, since a program-wide graph may have many same-named candidates.
type resolver struct {
	nodes []*graphmodel.Node
	raw   []*RawNode // parallel to nodes

	byName    map[string][]int
	byQualRel map[string]int // relpath + "#" + qualname -> node index (unique per file)
	byRelPath map[string][]int
	byDir     map[string][]int
}

func newResolver(nodes []*graphmodel.Node, raw []*RawNode) *resolver {
	r := &resolver{
		nodes:     nodes,
		raw:       raw,
		byName:    map[string][]int{},
		byQualRel: map[string]int{},
		byRelPath: map[string][]int{},
		byDir:     map[string][]int{},
	}
	for idx, n := range nodes {
		r.byName[n.Name] = append(r.byName[n.Name], idx)
		r.byRelPath[n.RelPath] = append(r.byRelPath[n.RelPath], idx)
		dir := filepath.Dir(n.RelPath)
		r.byDir[dir] = append(r.byDir[dir], idx)
		r.byQualRel[n.RelPath+"#"+raw[idx].Qualname] = idx
	}
	return r
}

// ResolveEdges resolves call and import references into graph edges,
// applying the tie-break rule: among multiple same-named
// candidates, prefer the one in the caller's own file; otherwise mark every
// candidate edge ambiguous. Duplicate (source,target,type) edges collapse.
func ResolveEdges(nodes []*graphmodel.Node, raw []*RawNode, calls []*CallRef, imports []*ImportRef) []*graphmodel.Edge {
	r := newResolver(nodes, raw)
	return r.resolve(calls, imports)
}

func (r *resolver) resolve(calls []*CallRef, imports []*ImportRef) []*graphmodel.Edge {
	dedup := map[graphmodel.EdgeKey]*graphmodel.Edge{}
	var order []graphmodel.EdgeKey

	add := func(source, target string, typ graphmodel.EdgeType, ambiguous bool) {
		if source == "" || target == "" {
			return
		}
		key := graphmodel.EdgeKey{Source: source, Target: target, Type: typ}
		if existing, ok := dedup[key]; ok {
			// Collapse duplicates; ambiguous wins if any occurrence was ambiguous.
			existing.Ambiguous = existing.Ambiguous || ambiguous
			return
		}
		e := &graphmodel.Edge{Source: source, Target: target, Type: typ, Ambiguous: ambiguous}
		dedup[key] = e
		order = append(order, key)
	}

	for _, c := range calls {
		callerIdx, ok := r.byQualRel[c.CallerRelPath+"#"+c.CallerQualname]
		if !ok {
			continue
		}
		sourceID := r.nodes[callerIdx].ID

		candidates := r.candidatesForCall(c)
		switch len(candidates) {
		case 0:
			// Unresolved name: dropped.
		case 1:
			add(sourceID, r.nodes[candidates[0]].ID, graphmodel.EdgeCall, false)
		default:
			// Tie-break: prefer the candidate in the caller's own file.
			sameFile := filterByRelPath(r.nodes, candidates, r.nodes[callerIdx].RelPath)
			if len(sameFile) == 1 {
				add(sourceID, r.nodes[sameFile[0]].ID, graphmodel.EdgeCall, false)
				continue
			}
			for _, cand := range candidates {
				add(sourceID, r.nodes[cand].ID, graphmodel.EdgeCall, true)
			}
		}
	}

	for _, imp := range imports {
		fileNodeIdx, ok := r.fileNodeForRelPath(imp.ImporterRelPath)
		if !ok {
			continue
		}
		sourceID := r.nodes[fileNodeIdx].ID

		candidates := r.candidatesForImport(imp)
		switch len(candidates) {
		case 0:
		case 1:
			add(sourceID, r.nodes[candidates[0]].ID, graphmodel.EdgeImport, false)
		default:
			for _, cand := range candidates {
				add(sourceID, r.nodes[cand].ID, graphmodel.EdgeImport, true)
			}
		}
	}

	edges := make([]*graphmodel.Edge, 0, len(order))
	for _, k := range order {
		edges = append(edges, dedup[k])
	}
	return edges
}

// candidatesForCall resolves a call by unqualified name, then, when a
// receiver type is statically known and several nodes share the name, by
// receiver-qualified name (qualname Receiver.CalleeName).
func (r *resolver) candidatesForCall(c *CallRef) []int {
	idxs := r.byName[c.CalleeName]
	if c.Receiver != "" && len(idxs) > 1 {
		var qualified []int
		for _, idx := range idxs {
			if r.raw[idx].Qualname == c.Receiver+"."+c.CalleeName {
				qualified = append(qualified, idx)
			}
		}
		if len(qualified) > 0 {
			return qualified
		}
	}
	return idxs
}

// candidatesForImport resolves an import target that syntactically names a
// module (directory) or a symbol (node name) within the repository.
func (r *resolver) candidatesForImport(imp *ImportRef) []int {
	if idxs, ok := r.byName[imp.Target]; ok && len(idxs) > 0 {
		return idxs
	}
	// Try resolving the import as a package/module directory: match by the
	// last path segment against a directory containing file nodes.
	last := lastPathSegment(imp.Target)
	var fileNodes []int
	for dir, idxs := range r.byDir {
		if lastPathSegment(dir) != last {
			continue
		}
		for _, idx := range idxs {
			if r.nodes[idx].Kind == graphmodel.KindFile {
				fileNodes = append(fileNodes, idx)
			}
		}
	}
	return fileNodes
}

func (r *resolver) fileNodeForRelPath(relpath string) (int, bool) {
	for _, idx := range r.byRelPath[relpath] {
		if r.nodes[idx].Kind == graphmodel.KindFile {
			return idx, true
		}
	}
	return 0, false
}

func filterByRelPath(nodes []*graphmodel.Node, candidates []int, relpath string) []int {
	var out []int
	for _, idx := range candidates {
		if nodes[idx].RelPath == relpath {
			out = append(out, idx)
		}
	}
	return out
}

func lastPathSegment(p string) string {
	p = filepath.ToSlash(p)
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
