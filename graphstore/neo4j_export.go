package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/viant/coderag/graphmodel"
)

// Neo4jExporter mirrors the program graph into Neo4j, an optional sink
// beyond graph.json for operators who want Cypher-level exploration of the
// call/import graph. Adapted from analyzer/graph_exporter.go's
// GraphExporter interface, re-pointed at graphmodel.Node/Edge and the
// neo4j.ExecuteQuery/UNWIND-MERGE batching idiom grounded on
// rohankatakam-coderisk's internal/graph/batch_operations.go — the only
// repository in the pack that drives this exact driver.
type Neo4jExporter struct {
	driver    neo4j.DriverWithContext
	database  string
	batchSize int
}

// NewNeo4jExporter verifies connectivity eagerly, matching
// neo4j_client.go's "fail fast on startup" convention.
func NewNeo4jExporter(ctx context.Context, uri, user, password, database string) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("graphstore: create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("graphstore: connect to neo4j at %s: %w", uri, err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jExporter{driver: driver, database: database, batchSize: 500}, nil
}

func (e *Neo4jExporter) Close(ctx context.Context) error {
	return e.driver.Close(ctx)
}

// Export mirrors g's current nodes and edges into Neo4j, MERGE-ing nodes on
// id (idempotent re-export) and edges as RELATES relationships keyed by
// their type property ("call" or "import") and carrying the ambiguous flag
// as a property.
func (e *Neo4jExporter) Export(ctx context.Context, g *Graph) error {
	nodes := g.Nodes()
	if err := e.exportNodes(ctx, nodes); err != nil {
		return err
	}
	return e.exportEdges(ctx, g.Edges())
}

func (e *Neo4jExporter) exportNodes(ctx context.Context, nodes []*graphmodel.Node) error {
	const query = `
		UNWIND $nodes AS node
		MERGE (n:CodeNode {id: node.id})
		SET n += node
		RETURN count(n) AS created
	`
	for start := 0; start < len(nodes); start += e.batchSize {
		end := start + e.batchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		params := nodeParams(nodes[start:end])
		if _, err := neo4j.ExecuteQuery(ctx, e.driver, query,
			map[string]any{"nodes": params},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(e.database)); err != nil {
			return fmt.Errorf("graphstore: export node batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

func (e *Neo4jExporter) exportEdges(ctx context.Context, edges []*graphmodel.Edge) error {
	const query = `
		UNWIND $edges AS edge
		MATCH (s:CodeNode {id: edge.source}), (t:CodeNode {id: edge.target})
		MERGE (s)-[r:RELATES {type: edge.type}]->(t)
		SET r.ambiguous = edge.ambiguous
		RETURN count(r) AS created
	`
	for start := 0; start < len(edges); start += e.batchSize {
		end := start + e.batchSize
		if end > len(edges) {
			end = len(edges)
		}
		params := edgeParams(edges[start:end])
		if _, err := neo4j.ExecuteQuery(ctx, e.driver, query,
			map[string]any{"edges": params},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(e.database)); err != nil {
			return fmt.Errorf("graphstore: export edge batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// nodeParams and edgeParams build the $nodes/$edges UNWIND payloads; split
// out from exportNodes/exportEdges so the param shape is testable without a
// live Neo4j connection.
func nodeParams(nodes []*graphmodel.Node) []map[string]any {
	params := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		params[i] = map[string]any{
			"id": n.ID, "kind": string(n.Kind), "name": n.Name, "file": n.RelPath,
			"start_line": n.StartLine, "end_line": n.EndLine, "language": n.Language,
			"loc": n.LOC, "cyclomatic": n.Cyclomatic,
			"num_calls_in": n.NumCallsIn, "num_calls_out": n.NumCallsOut,
		}
	}
	return params
}

func edgeParams(edges []*graphmodel.Edge) []map[string]any {
	params := make([]map[string]any, len(edges))
	for i, ed := range edges {
		params[i] = map[string]any{
			"source": ed.Source, "target": ed.Target,
			"type": string(ed.Type), "ambiguous": ed.Ambiguous,
		}
	}
	return params
}
