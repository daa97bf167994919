// Package job implements the job manager: a single JobRegistry value owned
// by the service, replacing a "module-level dictionaries" pattern, plus the
// worker pool long operations (parse, index, parse_and_index) run on, off
// the request path.
package job

import (
	"time"

	"github.com/viant/coderag/errs"
)

// Kind identifies what a job runs.
type Kind string

const (
	KindParse          Kind = "parse"
	KindIndex          Kind = "index"
	KindParseAndIndex  Kind = "parse_and_index"
)

// Status is a job's lifecycle state. Transitions follow
// pending -> running -> (completed | failed | cancelled), never backward.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Job is one registry entry. Completed records are retained until
// explicitly deleted; there is no automatic GC.
type Job struct {
	ID        string      `json:"job_id"`
	Kind      Kind        `json:"kind"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	// WorkDir is this job's private scratch directory name (a uuid, not
	// the deterministic job id), so concurrent fetch/parse jobs never
	// collide on disk.
	WorkDir   string      `json:"work_dir,omitempty"`
	Result    any         `json:"result,omitempty"`
	Error     *errs.Error `json:"error,omitempty"`

	cancel func()
}

// Snapshot returns a value copy safe to hand to callers outside the
// registry's lock, for the status(job_id) op.
func (j *Job) Snapshot() Job {
	cp := *j
	cp.cancel = nil
	return cp
}
