package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOwnerRepo(t *testing.T) {
	cases := map[string][2]string{
		"viant/coderag":                      {"viant", "coderag"},
		"https://github.com/viant/coderag":   {"viant", "coderag"},
		"https://github.com/viant/coderag.git": {"viant", "coderag"},
	}
	for input, want := range cases {
		owner, name, err := parseOwnerRepo(input)
		require.NoError(t, err, input)
		assert.Equal(t, want[0], owner, input)
		assert.Equal(t, want[1], name, input)
	}
}

func TestParseOwnerRepo_Malformed(t *testing.T) {
	_, _, err := parseOwnerRepo("not-a-valid-slug")
	assert.Error(t, err)
}

func buildTarGz(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return &buf
}

func TestExtractTarGz_ReturnsSingleTopLevelDir(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"viant-coderag-abc123/a.py":        "def hello(): return 1\n",
		"viant-coderag-abc123/sub/b.py":    "def world(): return 2\n",
	})

	dest := t.TempDir()
	root, err := extractTarGz(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "viant-coderag-abc123"), root)

	data, err := os.ReadFile(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "def hello")
}

func TestExtractTarGz_RejectsPathTraversal(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"root/../../escape.txt": "nope",
		"root/safe.txt":         "ok",
	})
	dest := t.TempDir()
	root, err := extractTarGz(archive, dest)
	require.NoError(t, err)

	_, err = os.ReadFile(filepath.Join(dest, "escape.txt"))
	assert.Error(t, err)
	_, err = os.ReadFile(filepath.Join(root, "safe.txt"))
	assert.NoError(t, err)
}
