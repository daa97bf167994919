// Package parser walks a repository tree and dispatches each source file to
// a language-specific extractor, producing language-neutral program nodes
// and edges.
package parser

import "github.com/viant/coderag/graphmodel"

// RawNode is the per-node output of a LanguageExtractor before edges are
// resolved and ids are assigned relative to the repository.
type RawNode struct {
	Kind     graphmodel.Kind
	Qualname string // e.g. "Receiver.Method", "ClassName", or a file name
	Name     string
	RelPath  string
	Start    int
	End      int
	Code     string
	Doc      string
	Language string

	// DecisionCount is the number of decision constructs (if/for/while/case/
	// catch/&&/||/ternary/comprehension-filter) found directly in this
	// node's own body, excluding nested function/class bodies. The
	// Annotator turns this into cyclomatic = 1 + DecisionCount.
	DecisionCount int
}

// CallRef is a call expression found inside some node's body, not yet
// resolved to a target node id.
type CallRef struct {
	CallerRelPath  string // relpath of the file containing the call
	CallerQualname string // qualname of the enclosing RawNode
	CalleeName     string // unqualified callee name
	Receiver       string // receiver-qualifying type name, if statically known; empty otherwise
}

// ImportRef is an import/require declaration found at file scope, not yet
// resolved to a target node id.
type ImportRef struct {
	ImporterRelPath string // the importing file's relpath
	Target          string // module path or imported symbol name
}

// ExtractResult is everything a LanguageExtractor produces for one file.
type ExtractResult struct {
	Nodes   []*RawNode
	Calls   []*CallRef
	Imports []*ImportRef
}

// LanguageExtractor extracts program nodes and raw call/import references
// from one source file. Implementations are dispatched by file extension
// through a table lookup (see Factory), keeping to a "finite Language
// variant" design.
type LanguageExtractor interface {
	// Language is the value stored on every Node this extractor produces.
	Language() string
	// SupportsExt reports whether this extractor handles the given
	// (lowercased, dot-prefixed) file extension.
	SupportsExt(ext string) bool
	// Extract parses one file's source and returns its nodes and raw call/
	// import references. A non-nil error means the whole file failed to
	// parse; callers skip the file and log the failure rather than
	// failing the overall parse.
	Extract(relpath string, src []byte) (*ExtractResult, error)
}
