package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/coderag/errs"
	"github.com/viant/coderag/graphstore"
	"github.com/viant/coderag/query"
)

var (
	searchQuery      string
	searchTopK       int
	searchCollection string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Semantic search over an indexed graph (spec op: search)",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchQuery, "query", "", "natural-language search query")
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 10, "number of results to return")
	searchCmd.Flags().StringVar(&searchCollection, "collection", "", "Qdrant collection name (default: $QDRANT_COLLECTION_NAME)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchQuery == "" {
		fmt.Fprintln(os.Stderr, "--query is required")
		os.Exit(ExitInvalidArg)
	}
	collection := searchCollection
	if collection == "" {
		collection = cfg.QdrantCollectionName
	}

	graph, err := graphstore.Load(graphPath())
	if err != nil {
		graph = graphstore.New(nil, nil)
	}

	engine := query.New(newEmbedder(), newIndexClient(), graph, nil)

	start := time.Now()
	hits, err := engine.Search(cmd.Context(), searchQuery, searchTopK, collection)
	metricsRegistry().SearchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return emitSearchError(err)
	}

	resp := map[string]any{
		"results":       hits,
		"query":         searchQuery,
		"total_results": len(hits),
	}
	data, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(data))
	return nil
}

// emitSearchError prints the {success:false,error:{kind,message}}
// envelope and exits with the code mapped from the error's Kind.
func emitSearchError(err error) error {
	kind := errs.KindOf(err)
	resp := map[string]any{
		"success": false,
		"error":   map[string]any{"kind": kind, "message": err.Error()},
	}
	data, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(data))
	os.Exit(exitCodeFor(kind, ExitQueryFailed))
	return nil
}
