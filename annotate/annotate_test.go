package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/coderag/graphmodel"
)

func TestAnnotate_SingleNodeNoCalls(t *testing.T) {
	nodes := []*graphmodel.Node{
		{ID: "function:hello:hello.py:1", StartLine: 1, EndLine: 1},
	}
	Annotate(nodes, nil, map[string]int{"function:hello:hello.py:1": 0})

	assert.Equal(t, 1, nodes[0].LOC)
	assert.Equal(t, 1, nodes[0].Cyclomatic)
	assert.Equal(t, 0, nodes[0].NumCallsIn)
	assert.Equal(t, 0, nodes[0].NumCallsOut)
}

func TestAnnotate_DirectCall(t *testing.T) {
	a := &graphmodel.Node{ID: "a", StartLine: 1, EndLine: 1}
	b := &graphmodel.Node{ID: "b", StartLine: 1, EndLine: 1}
	edges := []*graphmodel.Edge{{Source: "a", Target: "b", Type: graphmodel.EdgeCall}}

	Annotate([]*graphmodel.Node{a, b}, edges, map[string]int{"a": 0, "b": 0})

	assert.Equal(t, 1, a.NumCallsOut)
	assert.Equal(t, 0, a.NumCallsIn)
	assert.Equal(t, 0, b.NumCallsOut)
	assert.Equal(t, 1, b.NumCallsIn)
}

func TestAnnotate_MissingDecisionCountDefaultsToOne(t *testing.T) {
	n := &graphmodel.Node{ID: "unparsed", StartLine: 5, EndLine: 10}
	Annotate([]*graphmodel.Node{n}, nil, map[string]int{})
	assert.Equal(t, 1, n.Cyclomatic)
	assert.Equal(t, 6, n.LOC)
}

func TestAnnotate_ImportEdgesDoNotAffectFanCounts(t *testing.T) {
	a := &graphmodel.Node{ID: "a", StartLine: 1, EndLine: 1}
	b := &graphmodel.Node{ID: "b", StartLine: 1, EndLine: 1}
	edges := []*graphmodel.Edge{{Source: "a", Target: "b", Type: graphmodel.EdgeImport}}

	Annotate([]*graphmodel.Node{a, b}, edges, map[string]int{"a": 0, "b": 0})

	assert.Equal(t, 0, a.NumCallsOut)
	assert.Equal(t, 0, b.NumCallsIn)
}
