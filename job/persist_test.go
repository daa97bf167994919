package job

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer store.Close()

	j := Job{ID: "parse_1", Kind: KindParse, Status: StatusCompleted, CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(j))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded, "parse_1")
	assert.Equal(t, StatusCompleted, loaded["parse_1"].Status)
}
