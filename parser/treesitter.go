package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// tsDecisionConfig drives countTSDecisions for one tree-sitter grammar: the
// node types that count as a decision construct, the
// operator token types that make a binary node a logical-and/or, and the
// declaration node types whose bodies own their own complexity rather than
// contributing to an enclosing node's (grounded on the walk-and-switch idiom
// shared by inspector/java, inspector/jsx and kraklabs-cie's TreeSitterParser).
type tsDecisionConfig struct {
	decisionTypes    map[string]bool
	logicalOperators map[string]bool
	nestedDeclTypes  map[string]bool
}

func countTSDecisions(node *sitter.Node, cfg tsDecisionConfig) int {
	if node == nil {
		return 0
	}
	count := 0
	if cfg.decisionTypes[node.Type()] {
		count++
	}
	if node.Type() == "binary_expression" {
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil && cfg.logicalOperators[child.Type()] {
				count++
				break
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if cfg.nestedDeclTypes[child.Type()] {
			continue // owns its own node and its own complexity
		}
		count += countTSDecisions(child, cfg)
	}
	return count
}

// walkTS visits every named descendant of node (node included), invoking
// visit for each. Returning false from visit skips that subtree's children
// (used to avoid re-entering a nested declaration already queued for its own
// extraction pass).
func walkTS(node *sitter.Node, visit func(n *sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walkTS(node.NamedChild(i), visit)
	}
}

func tsContent(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

func tsLines(node *sitter.Node) (start, end int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}
