package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteJobID string

var deleteJobCmd = &cobra.Command{
	Use:   "delete-job",
	Short: "Remove a retained job record (spec op: delete_job)",
	RunE:  runDeleteJob,
}

func init() {
	deleteJobCmd.Flags().StringVar(&deleteJobID, "job-id", "", "job id to remove")
}

func runDeleteJob(cmd *cobra.Command, args []string) error {
	if deleteJobID == "" {
		fmt.Fprintln(os.Stderr, "--job-id is required")
		os.Exit(ExitInvalidArg)
	}

	ok := sharedRegistry().Delete(deleteJobID)
	data, _ := json.MarshalIndent(map[string]any{"ok": ok}, "", "  ")
	fmt.Println(string(data))
	if !ok {
		os.Exit(ExitInvalidArg)
	}
	return nil
}
