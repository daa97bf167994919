// Package annotate derives per-node metrics (loc, cyclomatic complexity,
// fan-in/fan-out) from a parsed graph, mutating each Node exactly once.
// Grounded on the counting style of analyzer/graph_exporter.go's node/edge
// bookkeeping, generalized from IR-export counters into the four metrics
// the annotator reports.
package annotate

import "github.com/viant/coderag/graphmodel"

// Annotate computes loc/cyclomatic/num_calls_in/num_calls_out for every node
// in place. decisionCounts supplies each node's raw decision-construct count
// from the parser (parser.Result.DecisionCounts); a node absent from the map
// is treated as a parse failure and gets cyclomatic=1.
func Annotate(nodes []*graphmodel.Node, edges []*graphmodel.Edge, decisionCounts map[string]int) {
	callsOut := make(map[string]int, len(nodes))
	callsIn := make(map[string]int, len(nodes))
	for _, e := range edges {
		if e.Type != graphmodel.EdgeCall {
			continue
		}
		callsOut[e.Source]++
		callsIn[e.Target]++
	}

	for _, n := range nodes {
		n.LOC = n.EndLine - n.StartLine + 1
		if n.LOC < 1 {
			n.LOC = 1
		}

		n.Cyclomatic = 1
		if count, ok := decisionCounts[n.ID]; ok {
			n.Cyclomatic = 1 + count
		}

		n.NumCallsOut = callsOut[n.ID]
		n.NumCallsIn = callsIn[n.ID]
	}
}
