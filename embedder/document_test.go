package embedder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/coderag/graphmodel"
)

func TestMakeDocument_IncludesCoreFields(t *testing.T) {
	n := &graphmodel.Node{
		Kind: graphmodel.KindFunction, Name: "hello", RelPath: "hello.py",
		Doc: "says hello", Code: "def hello():\n    return \"world\"",
	}
	doc := MakeDocument(n)

	assert.Contains(t, doc, "hello")
	assert.Contains(t, doc, "hello.py")
	assert.Contains(t, doc, "says hello")
	assert.Contains(t, doc, "return \"world\"")
}

func TestMakeDocument_TruncatesNotOmits(t *testing.T) {
	n := &graphmodel.Node{
		Kind: graphmodel.KindFunction, Name: "big", RelPath: "big.go",
		Code: strings.Repeat("x", documentCharCap*2),
	}
	doc := MakeDocument(n)
	assert.LessOrEqual(t, len(doc), documentCharCap)
	assert.NotEmpty(t, doc)
}
