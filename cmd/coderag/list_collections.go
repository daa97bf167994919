package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/coderag/errs"
)

var listCollectionsCmd = &cobra.Command{
	Use:   "list-collections",
	Short: "List collections known to the vector index (spec op: list_collections)",
	RunE:  runListCollections,
}

func runListCollections(cmd *cobra.Command, args []string) error {
	collections, err := newIndexClient().ListCollections(cmd.Context())
	if err != nil {
		kind := errs.KindOf(err)
		resp := map[string]any{
			"success": false,
			"error":   map[string]any{"kind": kind, "message": err.Error()},
		}
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		os.Exit(exitCodeFor(kind, ExitIndexUnreach))
	}

	data, _ := json.MarshalIndent(map[string]any{"collections": collections}, "", "  ")
	fmt.Println(string(data))
	return nil
}
