package graphstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/coderag/graphmodel"
)

func TestNodeParams_CarriesAnnotationFields(t *testing.T) {
	n := &graphmodel.Node{ID: "function:a:a.py:1", Kind: graphmodel.KindFunction, Name: "a", RelPath: "a.py", Cyclomatic: 3, LOC: 5}
	params := nodeParams([]*graphmodel.Node{n})
	require := params[0]
	assert.Equal(t, "function:a:a.py:1", require["id"])
	assert.Equal(t, "function", require["kind"])
	assert.Equal(t, 3, require["cyclomatic"])
	assert.Equal(t, 5, require["loc"])
}

func TestEdgeParams_CarriesAmbiguousFlag(t *testing.T) {
	e := &graphmodel.Edge{Source: "a", Target: "b", Type: graphmodel.EdgeCall, Ambiguous: true}
	params := edgeParams([]*graphmodel.Edge{e})
	assert.Equal(t, "a", params[0]["source"])
	assert.Equal(t, "call", params[0]["type"])
	assert.Equal(t, true, params[0]["ambiguous"])
}
