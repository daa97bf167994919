package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoEnvOrFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "code", cfg.QdrantCollectionName)
	assert.Equal(t, "local-hashing-trick-v1", cfg.ModelName)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://qdrant.internal:6333")
	t.Setenv("WORKER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://qdrant.internal:6333", cfg.QdrantURL)
	assert.Equal(t, 9090, cfg.WorkerPort)
}
