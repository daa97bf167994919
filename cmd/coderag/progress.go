package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/viant/coderag/job"
)

// newSpinner returns an indeterminate spinner for --wait, grounded on
// kraklabs-cie's progress.go NewSpinner styling. Returns nil (safe to call
// Describe/Finish on, per progressbar's own nil-receiver handling) when
// jsonOut is set or stderr isn't a TTY, so piped/CI output stays clean.
func newSpinner(description string) *progressbar.ProgressBar {
	if jsonOut || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
}

// waitForJob polls the registry until j reaches a terminal status, driving
// a spinner meanwhile, and returns the final snapshot. Used by --wait on
// parse/index/parse-and-index so a caller can block synchronously instead
// of polling status itself.
func waitForJob(r *job.Registry, id string) job.Job {
	spinner := newSpinner("running " + id)
	defer func() {
		if spinner != nil {
			spinner.Finish()
		}
	}()

	for {
		snap, ok := r.Status(id)
		if !ok {
			return snap
		}
		switch snap.Status {
		case job.StatusCompleted, job.StatusFailed, job.StatusCancelled:
			return snap
		}
		if spinner != nil {
			spinner.Add(1)
		}
		time.Sleep(150 * time.Millisecond)
	}
}
