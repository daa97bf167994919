package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"

	"github.com/viant/coderag/job"
)

var (
	colorCompleted = color.New(color.FgGreen)
	colorFailed    = color.New(color.FgRed)
	colorRunning   = color.New(color.FgYellow)
	colorPending   = color.New(color.FgCyan)
)

// printJobLine renders one job as a single colorized line for the default
// (non --json) CLI output; statusCmd/listJobsCmd fall back to this unless
// jsonOut is set.
func printJobLine(j job.Job) {
	c := colorForStatus(j.Status)
	c.Printf("%-28s %-10s %s\n", j.ID, j.Status, j.Kind)
	if j.Error != nil {
		fmt.Printf("  error: [%s] %s\n", j.Error.Kind, j.Error.Message)
	}
}

// sortedJobIDs orders list_jobs' human-readable output deterministically;
// the JSON branch doesn't need this since map key order doesn't matter there.
func sortedJobIDs(jobs map[string]job.Job) []string {
	ids := make([]string, 0, len(jobs))
	for id := range jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func colorForStatus(s job.Status) *color.Color {
	switch s {
	case job.StatusCompleted:
		return colorCompleted
	case job.StatusFailed, job.StatusCancelled:
		return colorFailed
	case job.StatusRunning:
		return colorRunning
	default:
		return colorPending
	}
}
