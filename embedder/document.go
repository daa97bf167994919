package embedder

import (
	"fmt"
	"strings"

	"github.com/viant/coderag/graphmodel"
)

// documentCharCap bounds make_document's output, following
// inspector/graph/document.go's chunkSize convention of keeping a single
// document comfortably under typical embedding-model input limits.
const documentCharCap = 8192 - 256

// MakeDocument assembles the textual representation of a node fed to the
// embedder: {kind, name, relpath, doc, code} joined with stable separators
// and truncated, never omitted, to documentCharCap.
func MakeDocument(n *graphmodel.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "kind: %s\n", n.Kind)
	fmt.Fprintf(&b, "name: %s\n", n.Name)
	fmt.Fprintf(&b, "relpath: %s\n", n.RelPath)
	if n.Doc != "" {
		fmt.Fprintf(&b, "doc: %s\n", n.Doc)
	}
	b.WriteString("code:\n")
	b.WriteString(n.Code)

	doc := b.String()
	if len(doc) > documentCharCap {
		doc = doc[:documentCharCap]
	}
	return doc
}
