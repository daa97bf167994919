package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viant/coderag/job"
)

var (
	paiRepoPath   string
	paiRepoURL    string
	paiBranch     string
	paiOutput     string
	paiCollection string
	paiRecreate   bool
	paiWait       bool
)

var parseAndIndexCmd = &cobra.Command{
	Use:   "parse-and-index",
	Short: "Parse a repository and index the resulting graph in one job (spec op: parse_and_index)",
	RunE:  runParseAndIndex,
}

func init() {
	parseAndIndexCmd.Flags().StringVar(&paiRepoPath, "repo-path", "", "local repository path")
	parseAndIndexCmd.Flags().StringVar(&paiRepoURL, "repo-url", "", "remote repository URL or owner/repo slug")
	parseAndIndexCmd.Flags().StringVar(&paiBranch, "branch", "main", "branch to fetch when --repo-url is set")
	parseAndIndexCmd.Flags().StringVar(&paiOutput, "output-path", "", "graph.json output path (default: $DATA_DIR/graph.json)")
	parseAndIndexCmd.Flags().StringVar(&paiCollection, "collection", "", "Qdrant collection name (default: $QDRANT_COLLECTION_NAME)")
	parseAndIndexCmd.Flags().BoolVar(&paiRecreate, "recreate", false, "drop and recreate the collection before upserting")
	parseAndIndexCmd.Flags().BoolVar(&paiWait, "wait", false, "block until the job finishes instead of returning its id immediately")
}

func runParseAndIndex(cmd *cobra.Command, args []string) error {
	collection := paiCollection
	if collection == "" {
		collection = cfg.QdrantCollectionName
	}
	outputPath := outputPathOr(paiOutput)

	j := sharedRegistry().Submit(cmd.Context(), job.KindParseAndIndex, func(ctx context.Context) (any, error) {
		if _, err := runParsePipeline(ctx, paiRepoPath, paiRepoURL, paiBranch, outputPath); err != nil {
			return nil, err
		}
		return runIndexPipeline(ctx, collection, outputPath, paiRecreate)
	})

	if paiWait {
		return emitJobFinal(waitForJob(sharedRegistry(), j.ID))
	}
	return emitJobSubmitted(j)
}
