package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/viant/coderag/graphmodel"
)

// GoExtractor is the Go extractor, built on go/parser + go/ast (adapted
// from inspector/golang/inspector.go). Go is the one language whose
// extractor uses the standard library's own parser instead of a
// tree-sitter grammar; there is no tree-sitter Go extractor.
type GoExtractor struct{}

func NewGoExtractor() *GoExtractor { return &GoExtractor{} }

func (e *GoExtractor) Language() string        { return "go" }
func (e *GoExtractor) SupportsExt(ext string) bool { return ext == ".go" }

func (e *GoExtractor) Extract(relpath string, src []byte) (*ExtractResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, relpath, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("go: parsing %s: %w", relpath, err)
	}

	result := &ExtractResult{}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			node, calls := e.extractFunc(fset, src, relpath, d)
			result.Nodes = append(result.Nodes, node)
			result.Calls = append(result.Calls, calls...)
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				result.Nodes = append(result.Nodes, e.extractTypes(fset, src, relpath, d)...)
			}
		}
	}

	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		result.Imports = append(result.Imports, &ImportRef{ImporterRelPath: relpath, Target: path})
	}

	return result, nil
}

func (e *GoExtractor) extractFunc(fset *token.FileSet, src []byte, relpath string, d *ast.FuncDecl) (*RawNode, []*CallRef) {
	receiver := ""
	if d.Recv != nil && len(d.Recv.List) > 0 {
		receiver = receiverTypeName(d.Recv.List[0].Type)
	}
	qualname := d.Name.Name
	if receiver != "" {
		qualname = receiver + "." + d.Name.Name
	}

	doc := ""
	if d.Doc != nil {
		doc = strings.TrimSpace(d.Doc.Text())
	}

	start := fset.Position(d.Pos()).Line
	end := fset.Position(d.End() - 1).Line
	code := sliceSource(src, fset.Position(d.Pos()).Offset, fset.Position(d.End()).Offset)

	decisions := 0
	var calls []*CallRef
	if d.Body != nil {
		decisions = countGoDecisions(d.Body)
		calls = collectGoCalls(d.Body, relpath, qualname, receiver)
	}

	node := &RawNode{
		Kind:          graphmodel.KindFunction,
		Qualname:      qualname,
		Name:          d.Name.Name,
		RelPath:       relpath,
		Start:         start,
		End:           end,
		Code:          code,
		Doc:           doc,
		Language:      "go",
		DecisionCount: decisions,
	}
	return node, calls
}

func (e *GoExtractor) extractTypes(fset *token.FileSet, src []byte, relpath string, d *ast.GenDecl) []*RawNode {
	var nodes []*RawNode
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		// Only struct/interface declarations map to kind=class; simple type
		// aliases carry no independent behavior worth a node.
		switch ts.Type.(type) {
		case *ast.StructType, *ast.InterfaceType:
		default:
			continue
		}

		doc := ""
		if d.Doc != nil {
			doc = strings.TrimSpace(d.Doc.Text())
		} else if ts.Doc != nil {
			doc = strings.TrimSpace(ts.Doc.Text())
		}

		declStart := d.Pos()
		declEnd := d.End()
		if len(d.Specs) > 1 {
			// Grouped type decl ("type ( A struct{...}; B struct{...} )"):
			// slice just this spec.
			declStart = ts.Pos()
			declEnd = ts.End()
		}

		nodes = append(nodes, &RawNode{
			Kind:     graphmodel.KindClass,
			Qualname: ts.Name.Name,
			Name:     ts.Name.Name,
			RelPath:  relpath,
			Start:    fset.Position(declStart).Line,
			End:      fset.Position(declEnd - 1).Line,
			Code:     sliceSource(src, fset.Position(declStart).Offset, fset.Position(declEnd).Offset),
			Doc:      doc,
			Language: "go",
			// Type declarations carry no control flow of their own.
			DecisionCount: 0,
		})
	}
	return nodes
}

func receiverTypeName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	if idx, ok := expr.(*ast.IndexExpr); ok { // generic receiver T[P]
		if ident, ok := idx.X.(*ast.Ident); ok {
			return ident.Name
		}
	}
	return ""
}

func sliceSource(src []byte, start, end int) string {
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// countGoDecisions implements the §4.2 cyclomatic rule for Go: if, for,
// range, case/comm-clauses, and logical &&/||. Go has no ternary, no
// catch/except and no comprehensions, and no nested named function/class
// declarations, so anonymous func literals are part of the enclosing
// node's own control flow and are counted, not excluded.
func countGoDecisions(body ast.Node) int {
	count := 0
	ast.Inspect(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.IfStmt:
			count++
		case *ast.ForStmt:
			count++
		case *ast.RangeStmt:
			count++
		case *ast.CaseClause:
			count++
		case *ast.CommClause:
			count++
		case *ast.BinaryExpr:
			if x.Op == token.LAND || x.Op == token.LOR {
				count++
			}
		}
		return true
	})
	return count
}

// collectGoCalls gathers call expressions reachable under body. Inside a
// method, every selector call whose base is a plain identifier (r.Method(),
// pkg.Func()) is tagged with the method's receiver type, whether or not the
// identifier is the receiver variable; the resolver uses that tag only to
// narrow several same-named candidates.
func collectGoCalls(body *ast.BlockStmt, relpath, callerQualname, receiverType string) []*CallRef {
	var calls []*CallRef
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		switch fn := call.Fun.(type) {
		case *ast.Ident:
			calls = append(calls, &CallRef{CallerRelPath: relpath, CallerQualname: callerQualname, CalleeName: fn.Name})
		case *ast.SelectorExpr:
			receiver := ""
			if ident, ok := fn.X.(*ast.Ident); ok && receiverType != "" && ident.Name != "" {
				// Best-effort: assume the selector base refers to the
				// receiver when its static type can't otherwise be
				// inferred without full type-checking.
				receiver = receiverType
				_ = ident
			}
			calls = append(calls, &CallRef{CallerRelPath: relpath, CallerQualname: callerQualname, CalleeName: fn.Sel.Name, Receiver: receiver})
		}
		return true
	})
	return calls
}
