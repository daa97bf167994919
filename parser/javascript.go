package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/viant/coderag/graphmodel"
)

var jsDecisionConfig = tsDecisionConfig{
	decisionTypes: map[string]bool{
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "switch_case": true,
		"switch_default": true, "catch_clause": true, "ternary_expression": true,
	},
	logicalOperators: map[string]bool{"&&": true, "||": true},
	nestedDeclTypes: map[string]bool{
		"function_declaration": true, "method_definition": true, "class_declaration": true,
		"arrow_function": true, "function_expression": true, "function": true,
	},
}

// JSExtractor handles both plain JavaScript and JSX, grounded on
// inspector/jsx/inspector.go's parser setup and generalized to JS function
// declarations, assigned arrow/function expressions, and class methods the
// way kraklabs-cie's parser_typescript.go walks the same grammar family.
type JSExtractor struct{}

func NewJavaScriptExtractor() *JSExtractor { return &JSExtractor{} }

func (e *JSExtractor) Language() string { return "javascript" }
func (e *JSExtractor) SupportsExt(ext string) bool {
	switch ext {
	case ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx":
		return true
	default:
		return false
	}
}

func (e *JSExtractor) Extract(relpath string, src []byte) (*ExtractResult, error) {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("javascript: parsing %s: %w", relpath, err)
	}
	root := tree.RootNode()

	result := &ExtractResult{}
	walkTS(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_declaration":
			result.Nodes = append(result.Nodes, e.extractClass(n, src, relpath))
		case "function_declaration":
			node, calls := e.extractFunction(n, n.ChildByFieldName("name"), src, relpath, "")
			if node != nil {
				result.Nodes = append(result.Nodes, node)
				result.Calls = append(result.Calls, calls...)
			}
		case "method_definition":
			node, calls := e.extractMethod(n, src, relpath)
			if node != nil {
				result.Nodes = append(result.Nodes, node)
				result.Calls = append(result.Calls, calls...)
			}
		case "variable_declarator":
			if node, calls := e.extractAssignedFunction(n, src, relpath); node != nil {
				result.Nodes = append(result.Nodes, node)
				result.Calls = append(result.Calls, calls...)
			}
		case "import_statement":
			if target := stringLiteralContent(n.ChildByFieldName("source"), src); target != "" {
				result.Imports = append(result.Imports, &ImportRef{ImporterRelPath: relpath, Target: target})
			}
			return false
		}
		return true
	})

	return result, nil
}

func (e *JSExtractor) extractClass(n *sitter.Node, src []byte, relpath string) *RawNode {
	name := fieldContent(n, "name", src)
	start, end := tsLines(n)
	return &RawNode{
		Kind: graphmodel.KindClass, Qualname: name, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: precedingComment(n, src),
		Language: "javascript",
	}
}

func (e *JSExtractor) extractFunction(n *sitter.Node, nameNode *sitter.Node, src []byte, relpath, qualifier string) (*RawNode, []*CallRef) {
	if nameNode == nil {
		return nil, nil
	}
	name := tsContent(nameNode, src)
	qualname := name
	if qualifier != "" {
		qualname = qualifier + "." + name
	}

	start, end := tsLines(n)
	body := n.ChildByFieldName("body")
	decisions := countTSDecisions(body, jsDecisionConfig)

	node := &RawNode{
		Kind: graphmodel.KindFunction, Qualname: qualname, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: precedingComment(n, src),
		Language: "javascript", DecisionCount: decisions,
	}
	return node, collectCallsGeneric(body, src, relpath, qualname, "call_expression", jsCallParts)
}

func (e *JSExtractor) extractMethod(n *sitter.Node, src []byte, relpath string) (*RawNode, []*CallRef) {
	className := ""
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_declaration" {
			className = fieldContent(p, "name", src)
			break
		}
	}
	return e.extractFunction(n, n.ChildByFieldName("name"), src, relpath, className)
}

// extractAssignedFunction handles `const f = function(){...}` and
// `const f = () => {...}`, the JS idiom with no declaration keyword of its
// own (mirrored from kraklabs-cie's walkTSFunctions variable_declarator case).
func (e *JSExtractor) extractAssignedFunction(n *sitter.Node, src []byte, relpath string) (*RawNode, []*CallRef) {
	value := n.ChildByFieldName("value")
	if value == nil {
		return nil, nil
	}
	switch value.Type() {
	case "arrow_function", "function_expression", "function":
	default:
		return nil, nil
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	name := tsContent(nameNode, src)

	start, end := tsLines(n)
	body := value.ChildByFieldName("body")
	decisions := countTSDecisions(body, jsDecisionConfig)

	node := &RawNode{
		Kind: graphmodel.KindFunction, Qualname: name, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: precedingComment(n, src),
		Language: "javascript", DecisionCount: decisions,
	}
	return node, collectCallsGeneric(body, src, relpath, name, "call_expression", jsCallParts)
}

// jsCallParts splits a call_expression into (calleeName, receiver), handling
// both bare calls (foo()) and member calls (obj.method()).
func jsCallParts(n *sitter.Node, src []byte) (name, receiver string) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return "", ""
	}
	switch fn.Type() {
	case "identifier":
		return tsContent(fn, src), ""
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		obj := fn.ChildByFieldName("object")
		if prop == nil {
			return "", ""
		}
		if obj != nil && obj.Type() == "identifier" {
			receiver = tsContent(obj, src)
		}
		return tsContent(prop, src), receiver
	default:
		return "", ""
	}
}

func stringLiteralContent(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	content := tsContent(n, src)
	if len(content) >= 2 {
		return content[1 : len(content)-1]
	}
	return content
}
