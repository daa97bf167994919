package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/viant/coderag/graphmodel"
)

var pythonDecisionConfig = tsDecisionConfig{
	decisionTypes: map[string]bool{
		"if_statement": true, "elif_clause": true, "for_statement": true, "while_statement": true,
		"except_clause": true, "conditional_expression": true, "case_clause": true,
		"if_clause": true, "boolean_operator": true,
	},
	logicalOperators: map[string]bool{}, // boolean_operator is itself the decision node
	nestedDeclTypes:  map[string]bool{"function_definition": true, "class_definition": true},
}

// PythonExtractor has no counterpart in viant-linager — it only ships Go,
// Java and JSX inspectors — so it is built fresh on the same
// smacker/go-tree-sitter traversal idiom as java.go and javascript.go, using
// the python grammar binding from the same module.
type PythonExtractor struct{}

func NewPythonExtractor() *PythonExtractor { return &PythonExtractor{} }

func (e *PythonExtractor) Language() string            { return "python" }
func (e *PythonExtractor) SupportsExt(ext string) bool { return ext == ".py" }

func (e *PythonExtractor) Extract(relpath string, src []byte) (*ExtractResult, error) {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("python: parsing %s: %w", relpath, err)
	}
	root := tree.RootNode()

	result := &ExtractResult{}
	walkTS(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_definition":
			result.Nodes = append(result.Nodes, e.extractClass(n, src, relpath))
		case "function_definition":
			node, calls := e.extractFunction(n, src, relpath)
			if node != nil {
				result.Nodes = append(result.Nodes, node)
				result.Calls = append(result.Calls, calls...)
			}
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if target := tsContent(n.NamedChild(i), src); target != "" {
					result.Imports = append(result.Imports, &ImportRef{ImporterRelPath: relpath, Target: target})
				}
			}
			return false
		case "import_from_statement":
			if target := fieldContent(n, "module_name", src); target != "" {
				result.Imports = append(result.Imports, &ImportRef{ImporterRelPath: relpath, Target: target})
			}
			return false
		}
		return true
	})

	return result, nil
}

func (e *PythonExtractor) extractClass(n *sitter.Node, src []byte, relpath string) *RawNode {
	name := fieldContent(n, "name", src)
	start, end := tsLines(n)
	return &RawNode{
		Kind: graphmodel.KindClass, Qualname: name, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: docstring(n, src),
		Language: "python",
	}
}

func (e *PythonExtractor) extractFunction(n *sitter.Node, src []byte, relpath string) (*RawNode, []*CallRef) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	name := tsContent(nameNode, src)
	className := enclosingPythonClass(n, src)
	qualname := name
	if className != "" {
		qualname = className + "." + name
	}

	start, end := tsLines(n)
	body := n.ChildByFieldName("body")
	decisions := countTSDecisions(body, pythonDecisionConfig)

	node := &RawNode{
		Kind: graphmodel.KindFunction, Qualname: qualname, Name: name, RelPath: relpath,
		Start: start, End: end, Code: tsContent(n, src), Doc: docstring(n, src),
		Language: "python", DecisionCount: decisions,
	}
	parts := func(call *sitter.Node, src []byte) (string, string) {
		calleeName, receiver := pythonCallParts(call, src)
		if receiver == "" && isSelfCall(call, src) && className != "" {
			receiver = className
		}
		return calleeName, receiver
	}
	return node, collectCallsGeneric(body, src, relpath, qualname, "call", parts)
}

// isSelfCall reports whether a call's receiver object is the conventional
// self/cls name, in which case it resolves against the enclosing class
// rather than as a free-standing receiver type.
func isSelfCall(n *sitter.Node, src []byte) bool {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return false
	}
	object := fn.ChildByFieldName("object")
	if object == nil || object.Type() != "identifier" {
		return false
	}
	name := tsContent(object, src)
	return name == "self" || name == "cls"
}

func enclosingPythonClass(n *sitter.Node, src []byte) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_definition" {
			return fieldContent(p, "name", src)
		}
	}
	return ""
}

// pythonCallParts splits a call into (calleeName, receiver) for both bare
// calls (foo()) and attribute calls (self.method(), module.func()).
func pythonCallParts(n *sitter.Node, src []byte) (name, receiver string) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return "", ""
	}
	switch fn.Type() {
	case "identifier":
		return tsContent(fn, src), ""
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		object := fn.ChildByFieldName("object")
		if attr == nil {
			return "", ""
		}
		if object != nil && object.Type() == "identifier" {
			name := tsContent(object, src)
			if name != "self" && name != "cls" {
				receiver = name
			}
		}
		return tsContent(attr, src), receiver
	default:
		return "", ""
	}
}

// docstring returns the first statement of a def/class body when it is a
// bare string literal expression, Python's documentation convention.
func docstring(n *sitter.Node, src []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	expr := first.NamedChild(0)
	switch expr.Type() {
	case "string":
		return tsContent(expr, src)
	default:
		return ""
	}
}
