package parser

import "strings"

// Factory dispatches a file extension to the LanguageExtractor registered
// for it, generalizing inspector.Factory.GetInspector's extension switch
// into a table lookup.
type Factory struct {
	byExt map[string]LanguageExtractor
}

// NewFactory builds a dispatch table from the given extractors. Later
// extractors win on extension conflicts.
func NewFactory(extractors ...LanguageExtractor) *Factory {
	f := &Factory{byExt: make(map[string]LanguageExtractor)}
	for _, e := range extractors {
		f.Register(e)
	}
	return f
}

// Register adds an extractor, probing every extension it claims to support
// out of the known candidate set.
func (f *Factory) Register(e LanguageExtractor) {
	for _, ext := range knownExtensions {
		if e.SupportsExt(ext) {
			f.byExt[ext] = e
		}
	}
}

// knownExtensions is the probe set used by Register; extractors only need
// to answer SupportsExt truthfully for the extensions they actually handle.
var knownExtensions = []string{
	".go", ".java", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".py", ".pyi",
}

// ForExt returns the extractor registered for a file extension (lowercased,
// dot-prefixed), or nil if the language is unsupported.
func (f *Factory) ForExt(ext string) LanguageExtractor {
	return f.byExt[strings.ToLower(ext)]
}

// DefaultFactory registers every built-in extractor: Go (primary, go/ast),
// Java, JavaScript/JSX and Python (all tree-sitter based).
func DefaultFactory() *Factory {
	return NewFactory(
		NewGoExtractor(),
		NewJavaExtractor(),
		NewJavaScriptExtractor(),
		NewPythonExtractor(),
	)
}
