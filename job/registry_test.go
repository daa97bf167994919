package job

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/viant/coderag/errs"
)

// TestMain verifies Submit's per-job goroutines always exit: goleak checks
// once all tests have run, and jobs a test does not wait for are no-ops
// that finish on their own.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor(t *testing.T, r *Registry, id string, want Status) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, ok := r.Status(id)
		require.True(t, ok)
		if snap.Status == want {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("job %s did not reach status %s", id, want)
	return Job{}
}

func TestSubmit_CompletesAndRecordsResult(t *testing.T) {
	r := New()
	j := r.Submit(context.Background(), KindParse, func(ctx context.Context) (any, error) {
		return map[string]int{"node_count": 1}, nil
	})
	snap := waitFor(t, r, j.ID, StatusCompleted)
	assert.Equal(t, KindParse, snap.Kind)
	assert.NotNil(t, snap.Result)
	assert.Nil(t, snap.Error)
}

func TestSubmit_FailurePopulatesErrorKind(t *testing.T) {
	r := New()
	j := r.Submit(context.Background(), KindIndex, func(ctx context.Context) (any, error) {
		return nil, errs.New(errs.IndexUnavailable, "qdrant unreachable")
	})
	snap := waitFor(t, r, j.ID, StatusFailed)
	require.NotNil(t, snap.Error)
	assert.Equal(t, errs.IndexUnavailable, snap.Error.Kind)
}

func TestSubmit_AssignsDistinctWorkDirs(t *testing.T) {
	r := New()
	noop := func(ctx context.Context) (any, error) { return nil, nil }
	j1 := r.Submit(context.Background(), KindParse, noop)
	j2 := r.Submit(context.Background(), KindParse, noop)
	assert.NotEmpty(t, j1.WorkDir)
	assert.NotEqual(t, j1.WorkDir, j2.WorkDir)
}

func TestJobIDs_AreMonotonicPerKind(t *testing.T) {
	r := New()
	noop := func(ctx context.Context) (any, error) { return nil, nil }
	j1 := r.Submit(context.Background(), KindParse, noop)
	j2 := r.Submit(context.Background(), KindParse, noop)
	j3 := r.Submit(context.Background(), KindIndex, noop)
	assert.Equal(t, "parse_1", j1.ID)
	assert.Equal(t, "parse_2", j2.ID)
	assert.Equal(t, "index_1", j3.ID)
}

func TestCancel_StopsAtNextSuspensionPoint(t *testing.T) {
	r := New()
	started := make(chan struct{})
	j := r.Submit(context.Background(), KindParseAndIndex, func(ctx context.Context) (any, error) {
		close(started)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
			return "should not reach here", nil
		}
	})
	<-started
	require.True(t, r.Cancel(j.ID))
	waitFor(t, r, j.ID, StatusCancelled)
}

func TestList_BucketsByStatus(t *testing.T) {
	r := New()
	r.Submit(context.Background(), KindParse, func(ctx context.Context) (any, error) { return "ok", nil })
	j2 := r.Submit(context.Background(), KindParse, func(ctx context.Context) (any, error) {
		return nil, errors.New("boom")
	})
	waitFor(t, r, j2.ID, StatusFailed)

	list := r.List()
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.Failed)
}

func TestAttachStore_PersistsCompletedJobs(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer store.Close()

	r := New()
	require.NoError(t, r.AttachStore(store))

	j := r.Submit(context.Background(), KindParse, func(ctx context.Context) (any, error) {
		return map[string]int{"node_count": 3}, nil
	})
	waitFor(t, r, j.ID, StatusCompleted)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded, j.ID)
	assert.Equal(t, StatusCompleted, loaded[j.ID].Status)
}

func TestAttachStore_RestoresHistoryFromPriorProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(Job{ID: "parse_7", Kind: KindParse, Status: StatusCompleted}))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	r := New()
	require.NoError(t, r.AttachStore(reopened))

	snap, ok := r.Status("parse_7")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, snap.Status)
}

func TestDelete_RemovesRecord(t *testing.T) {
	r := New()
	j := r.Submit(context.Background(), KindParse, func(ctx context.Context) (any, error) { return nil, nil })
	waitFor(t, r, j.ID, StatusCompleted)

	assert.True(t, r.Delete(j.ID))
	_, ok := r.Status(j.ID)
	assert.False(t, ok)
	assert.False(t, r.Delete(j.ID))
}
