package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List every retained job, bucketed by status (spec op: list_jobs)",
	RunE:  runListJobs,
}

func runListJobs(cmd *cobra.Command, args []string) error {
	result := sharedRegistry().List()

	if !jsonOut {
		fmt.Printf("total=%d active=%d completed=%d failed=%d\n",
			result.Total, result.Active, result.Completed, result.Failed)
		for _, id := range sortedJobIDs(result.Jobs) {
			printJobLine(result.Jobs[id])
		}
		return nil
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
	return nil
}
