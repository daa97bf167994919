package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/viant/coderag/graphmodel"
)

var javaDecisionConfig = tsDecisionConfig{
	decisionTypes: map[string]bool{
		"if_statement": true, "for_statement": true, "while_statement": true,
		"do_statement": true, "switch_block_statement_group": true,
		"switch_rule": true, "catch_clause": true, "ternary_expression": true,
	},
	logicalOperators: map[string]bool{"&&": true, "||": true},
	nestedDeclTypes: map[string]bool{
		"method_declaration": true, "constructor_declaration": true,
		"class_declaration": true, "interface_declaration": true, "enum_declaration": true,
	},
}

// JavaExtractor is grounded on inspector/java/inspector.go's tree-sitter
// parse setup, generalized from its type-extraction pass to also walk method
// bodies for decision counts and call expressions.
type JavaExtractor struct{}

func NewJavaExtractor() *JavaExtractor { return &JavaExtractor{} }

func (e *JavaExtractor) Language() string            { return "java" }
func (e *JavaExtractor) SupportsExt(ext string) bool { return ext == ".java" }

func (e *JavaExtractor) Extract(relpath string, src []byte) (*ExtractResult, error) {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("java: parsing %s: %w", relpath, err)
	}
	root := tree.RootNode()

	result := &ExtractResult{}
	walkTS(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration":
			result.Nodes = append(result.Nodes, e.extractType(n, src, relpath))
		case "method_declaration", "constructor_declaration":
			node, calls := e.extractMethod(n, src, relpath)
			if node != nil {
				result.Nodes = append(result.Nodes, node)
				result.Calls = append(result.Calls, calls...)
			}
		case "import_declaration":
			if target := importTarget(n, src); target != "" {
				result.Imports = append(result.Imports, &ImportRef{ImporterRelPath: relpath, Target: target})
			}
			return false
		}
		return true
	})

	return result, nil
}

func (e *JavaExtractor) extractType(n *sitter.Node, src []byte, relpath string) *RawNode {
	name := fieldContent(n, "name", src)
	start, end := tsLines(n)
	return &RawNode{
		Kind: graphmodel.KindClass, Qualname: name, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: precedingComment(n, src),
		Language: "java",
	}
}

func (e *JavaExtractor) extractMethod(n *sitter.Node, src []byte, relpath string) (*RawNode, []*CallRef) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	name := tsContent(nameNode, src)
	qualname := qualifyJavaMethod(n, src, name)

	start, end := tsLines(n)
	bodyNode := n.ChildByFieldName("body")
	decisions := countTSDecisions(bodyNode, javaDecisionConfig)

	node := &RawNode{
		Kind: graphmodel.KindFunction, Qualname: qualname, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: precedingComment(n, src),
		Language: "java", DecisionCount: decisions,
	}
	return node, collectCallsGeneric(bodyNode, src, relpath, qualname, "method_invocation", javaCallParts)
}

// qualifyJavaMethod qualifies a method name with its enclosing type, giving
// Type.method, the same shape as Go's Receiver.Method qualnames.
func qualifyJavaMethod(n *sitter.Node, src []byte, name string) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration":
			if className := fieldContent(p, "name", src); className != "" {
				return className + "." + name
			}
			return name
		}
	}
	return name
}

// javaCallParts splits a method_invocation into (calleeName, receiver).
func javaCallParts(n *sitter.Node, src []byte) (name, receiver string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return "", ""
	}
	name = tsContent(nameNode, src)
	if obj := n.ChildByFieldName("object"); obj != nil && obj.Type() == "identifier" {
		receiver = tsContent(obj, src)
	}
	return name, receiver
}

func importTarget(n *sitter.Node, src []byte) string {
	if n.NamedChildCount() == 0 {
		return ""
	}
	return tsContent(n.NamedChild(0), src)
}

func fieldContent(n *sitter.Node, field string, src []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return tsContent(child, src)
}

// precedingComment picks up a javadoc/line comment immediately preceding a
// declaration, adapted from inspector/java/documentation.go's sibling-walk.
func precedingComment(n *sitter.Node, src []byte) string {
	prev := n.PrevNamedSibling()
	if prev == nil {
		return ""
	}
	switch prev.Type() {
	case "comment", "block_comment", "line_comment":
		return tsContent(prev, src)
	default:
		return ""
	}
}

// collectCallsGeneric gathers call-shaped nodes of callNodeType under body,
// resolving each via the language-specific splitter. Shared by the Java,
// JavaScript and Python extractors to avoid repeating the same walk three
// times over.
func collectCallsGeneric(body *sitter.Node, src []byte, relpath, callerQualname, callNodeType string, parts func(n *sitter.Node, src []byte) (name, receiver string)) []*CallRef {
	if body == nil {
		return nil
	}
	var calls []*CallRef
	walkTS(body, func(n *sitter.Node) bool {
		if n.Type() == callNodeType {
			if name, receiver := parts(n, src); name != "" {
				calls = append(calls, &CallRef{CallerRelPath: relpath, CallerQualname: callerQualname, CalleeName: name, Receiver: receiver})
			}
		}
		return true
	})
	return calls
}
