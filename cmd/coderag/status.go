package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusJobID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report a job's current state (spec op: status)",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusJobID, "job-id", "", "job id returned by parse/index/parse-and-index")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusJobID == "" {
		fmt.Fprintln(os.Stderr, "--job-id is required")
		os.Exit(ExitInvalidArg)
	}

	j, ok := sharedRegistry().Status(statusJobID)
	if !ok {
		fmt.Fprintf(os.Stderr, "job %q not found\n", statusJobID)
		os.Exit(ExitInvalidArg)
	}

	if !jsonOut {
		printJobLine(j)
		return nil
	}

	data, _ := json.MarshalIndent(j, "", "  ")
	fmt.Println(string(data))
	return nil
}
