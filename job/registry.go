package job

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/viant/coderag/errs"
)

// Registry is the single explicit JobRegistry value owned by the service,
// replacing module-level dictionaries; callers receive a handle to it
// explicitly rather than reaching into package-level state.
// It owns the worker pool every long-running job runs on.
type Registry struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	order    []string
	counters map[Kind]int

	pool  *semaphore.Weighted
	store *Store
}

// New builds a Registry with a worker pool sized max(2, cpu_count),
// grounded on the pack's `golang.org/x/sync/semaphore`-weighted executor
// idiom (kralicky-protocompile's compiler.go).
func New() *Registry {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	return &Registry{
		jobs:     make(map[string]*Job),
		counters: make(map[Kind]int),
		pool:     semaphore.NewWeighted(int64(workers)),
	}
}

// Submit creates a pending job, then runs fn asynchronously once a worker
// slot is free, transitioning the job through running -> (completed |
// failed | cancelled). It returns immediately with the job's pending
// snapshot: parse/index/parse_and_index all return {job_id,
// status:"processing"} shaped responses.
func (r *Registry) Submit(ctx context.Context, kind Kind, fn func(ctx context.Context) (any, error)) *Job {
	id := r.nextID(kind)
	ctx, cancel := context.WithCancel(ctx)

	j := &Job{
		ID: id, Kind: kind, Status: StatusPending, WorkDir: uuid.NewString(),
		CreatedAt: now(), UpdatedAt: now(), cancel: cancel,
	}

	r.mu.Lock()
	r.jobs[id] = j
	r.order = append(r.order, id)
	r.mu.Unlock()

	go r.run(ctx, j, fn)
	return j
}

func (r *Registry) run(ctx context.Context, j *Job, fn func(ctx context.Context) (any, error)) {
	if err := r.pool.Acquire(ctx, 1); err != nil {
		r.finish(j, nil, errs.Wrap(errs.Internal, err), StatusCancelled)
		return
	}
	defer r.pool.Release(1)

	r.transition(j, StatusRunning)

	if ctx.Err() != nil {
		r.finish(j, nil, nil, StatusCancelled)
		return
	}

	result, err := fn(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		r.finish(j, nil, nil, StatusCancelled)
	case err != nil:
		r.finish(j, nil, err, StatusFailed)
	default:
		r.finish(j, result, nil, StatusCompleted)
	}
}

func (r *Registry) transition(j *Job, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.Status = status
	j.UpdatedAt = now()
}

func (r *Registry) finish(j *Job, result any, err error, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.Status = status
	j.UpdatedAt = now()
	j.Result = result
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			j.Error = e
		} else {
			j.Error = errs.Wrap(errs.Internal, err)
		}
	}

	if r.store == nil {
		return
	}
	// Mirrored while the lock is held, so a caller that observes the
	// terminal status can already read the record back from the store.
	if saveErr := r.store.Save(j.Snapshot()); saveErr != nil {
		logrus.WithField("job", j.ID).WithError(saveErr).Warn("job: failed to persist completed record")
	}
}

// AttachStore wires a durability Store into the registry: every job record
// mirrored by an earlier process is loaded into the in-memory history, and
// every job that reaches a terminal state from then on is mirrored back out.
// Loaded records keep their original id in the counters so nextID never
// reissues one already on disk.
func (r *Registry) AttachStore(s *Store) error {
	loaded, err := s.Load()
	if err != nil {
		return fmt.Errorf("job: restore history: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rec := range loaded {
		j := rec
		if i := strings.LastIndex(id, "_"); i > 0 {
			if n, err := strconv.Atoi(id[i+1:]); err == nil && n > r.counters[Kind(id[:i])] {
				r.counters[Kind(id[:i])] = n
			}
		}
		if _, exists := r.jobs[id]; exists {
			continue
		}
		r.jobs[id] = &j
		r.order = append(r.order, id)
	}
	r.store = s
	return nil
}

// Status returns the current snapshot of job id, or (Job{}, false) if unknown
// (unknown ids surface as errs.NotFound).
func (r *Registry) Status(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return j.Snapshot(), true
}

// List returns every retained job, plus counts by bucket:
// {total,active,completed,failed,jobs:{...}}.
type ListResult struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
	Jobs      map[string]Job `json:"jobs"`
}

func (r *Registry) List() ListResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := ListResult{Jobs: make(map[string]Job, len(r.jobs))}
	for _, id := range r.order {
		j := r.jobs[id]
		out.Jobs[id] = j.Snapshot()
		out.Total++
		switch j.Status {
		case StatusPending, StatusRunning:
			out.Active++
		case StatusCompleted:
			out.Completed++
		case StatusFailed, StatusCancelled:
			out.Failed++
		}
	}
	return out
}

// Delete removes a job record. It does not cancel a running job; call
// Cancel first if that's the intent.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return false
	}
	delete(r.jobs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Cancel requests cooperative cancellation. The job stops at its next
// suspension point; it is marked cancelled once the running
// goroutine observes ctx.Done().
func (r *Registry) Cancel(id string) bool {
	r.mu.RLock()
	j, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok || j.cancel == nil {
		return false
	}
	j.cancel()
	return true
}

func (r *Registry) nextID(kind Kind) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[kind]++
	return fmt.Sprintf("%s_%d", kind, r.counters[kind])
}

// now is factored out so tests can't observe wall-clock nondeterminism in
// anything that asserts on timestamps at the millisecond level; it's still
// real time, just one call site.
func now() time.Time { return time.Now().UTC() }
