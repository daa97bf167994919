package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/coderag/annotate"
	"github.com/viant/coderag/errs"
	"github.com/viant/coderag/graphstore"
	"github.com/viant/coderag/job"
	"github.com/viant/coderag/parser"
	"github.com/viant/coderag/parser/fetch"
)

var (
	parseRepoPath string
	parseRepoURL  string
	parseBranch   string
	parseOutput   string
	parseWait     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a repository into a program graph (spec op: parse)",
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseRepoPath, "repo-path", "", "local repository path")
	parseCmd.Flags().StringVar(&parseRepoURL, "repo-url", "", "remote repository URL or owner/repo slug")
	parseCmd.Flags().StringVar(&parseBranch, "branch", "main", "branch to fetch when --repo-url is set")
	parseCmd.Flags().StringVar(&parseOutput, "output-path", "", "graph.json output path (default: $DATA_DIR/graph.json)")
	parseCmd.Flags().BoolVar(&parseWait, "wait", false, "block until the job finishes instead of returning its id immediately")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseRepoPath == "" && parseRepoURL == "" {
		fmt.Fprintln(os.Stderr, "one of --repo-path or --repo-url is required")
		os.Exit(ExitInvalidArg)
	}

	j := sharedRegistry().Submit(cmd.Context(), job.KindParse, func(ctx context.Context) (any, error) {
		return runParsePipeline(ctx, parseRepoPath, parseRepoURL, parseBranch, outputPathOr(parseOutput))
	})

	if parseWait {
		return emitJobFinal(waitForJob(sharedRegistry(), j.ID))
	}
	return emitJobSubmitted(j)
}

// runParsePipeline resolves a local or remote repository, parses it, and
// persists graph.json; it is shared by parse and parse_and_index.
func runParsePipeline(ctx context.Context, repoPath, repoURL, branch, outputPath string) (map[string]any, error) {
	root := repoPath
	if root == "" {
		if err := job.RunPhase(ctx, job.TimeoutFetch, func(ctx context.Context) error {
			f := fetch.New(os.Getenv("GITHUB_TOKEN"))
			local, err := f.Fetch(ctx, repoURL, branch, cfg.TmpDir)
			if err != nil {
				return err
			}
			root = local
			return nil
		}); err != nil {
			return nil, err
		}
	}

	factory := parser.DefaultFactory()
	result, err := parser.ParseRepository(factory, root, parser.WalkOptions{}, logger)
	if err != nil {
		return nil, errs.Wrap(errs.ParseFailed, err)
	}

	annotate.Annotate(result.Nodes, result.Edges, result.DecisionCounts)

	graph := graphstore.New(result.Nodes, result.Edges)
	if err := graph.Save(outputPath); err != nil {
		return nil, errs.Wrap(errs.Internal, err)
	}

	return map[string]any{
		"output_path": outputPath,
		"node_count":  graph.NodeCount(),
		"edge_count":  graph.EdgeCount(),
		"file_errors": len(result.FileErrors),
	}, nil
}

func outputPathOr(override string) string {
	if override != "" {
		return override
	}
	return graphPath()
}

// emitJobSubmitted prints the {job_id, status:"processing"} response
// shared by parse/index/parse_and_index.
func emitJobSubmitted(j *job.Job) error {
	resp := map[string]any{"job_id": j.ID, "status": "processing"}
	data, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(data))
	return nil
}

// emitJobFinal prints a job's terminal snapshot for --wait, non-zero exiting
// on failure or cancellation so scripts can branch on the CLI's exit code.
func emitJobFinal(j job.Job) error {
	if !jsonOut {
		printJobLine(j)
	} else {
		data, _ := json.MarshalIndent(j, "", "  ")
		fmt.Println(string(data))
	}
	if j.Status == job.StatusFailed || j.Status == job.StatusCancelled {
		kind := errs.Internal
		if j.Error != nil {
			kind = j.Error.Kind
		}
		os.Exit(exitCodeFor(kind, ExitParseFailure))
	}
	return nil
}
