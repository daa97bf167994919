package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointMap_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qdrant_map.json")
	in := map[uint64]string{1: "function:a:a.py:1", 2: "function:b:b.py:1"}

	require.NoError(t, WritePointMap(path, in))
	out, err := ReadPointMap(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStatus_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_status.json")
	in := Status{
		Collection: "code", Model: "local-hashing-trick-v1", VectorSize: 384,
		Distance: "Cosine", PointsCount: 42, IndexedAt: time.Now().UTC().Truncate(time.Second),
		Status: StatusCompleted,
	}

	require.NoError(t, WriteStatus(path, in))
	out, err := ReadStatus(path)
	require.NoError(t, err)
	assert.Equal(t, in.Collection, out.Collection)
	assert.Equal(t, in.PointsCount, out.PointsCount)
	assert.Equal(t, in.Status, out.Status)
}

func TestWriteAtomic_NoPartialFileOnConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_status.json")
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			_ = WriteStatus(path, Status{Collection: "code", PointsCount: n, Status: StatusCompleted})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	out, err := ReadStatus(path)
	require.NoError(t, err)
	assert.Equal(t, "code", out.Collection)
}
