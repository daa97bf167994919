package main

import (
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/viant/coderag/annindex"
	"github.com/viant/coderag/embedder"
	"github.com/viant/coderag/job"
	"github.com/viant/coderag/metrics"
)

var (
	registryOnce sync.Once
	registry     *job.Registry

	metricsOnce sync.Once
	metricsReg  *metrics.Registry
)

// sharedRegistry returns the process-lifetime JobRegistry. One process, one
// registry value, owned by the service for its whole lifetime. Job history
// is mirrored into a bbolt store under the data dir so it survives a
// restart; a store that fails to open leaves the registry purely in-memory
// rather than failing the command.
func sharedRegistry() *job.Registry {
	registryOnce.Do(func() {
		registry = job.New()
		store, err := job.OpenStore(jobStorePath())
		if err != nil {
			logrus.WithError(err).Warn("job: durable store unavailable, job history is in-memory only")
			return
		}
		if err := registry.AttachStore(store); err != nil {
			logrus.WithError(err).Warn("job: failed to restore job history from store")
		}
	})
	return registry
}

func jobStorePath() string {
	return filepath.Join(cfg.DataDir, "jobs.db")
}

// metricsRegistry returns the process-lifetime metrics.Registry, registered
// against the default Prometheus registerer so /metrics on the health
// server can scrape it.
func metricsRegistry() *metrics.Registry {
	metricsOnce.Do(func() { metricsReg = metrics.New(prometheus.DefaultRegisterer) })
	return metricsReg
}

func graphPath() string {
	return filepath.Join(cfg.DataDir, "graph.json")
}

func pointMapPath() string {
	return filepath.Join(cfg.DataDir, "qdrant_map.json")
}

func indexStatusPath() string {
	return filepath.Join(cfg.DataDir, "index_status.json")
}

func newEmbedder() embedder.Embedder {
	if cfg.ModelName == "" || cfg.ModelName == "local-hashing-trick-v1" {
		return embedder.NewLocalEmbedder(384)
	}
	return embedder.NewOpenAIEmbedder(cfg.ModelName)
}

func newIndexClient() *annindex.Client {
	return annindex.NewClient(cfg.QdrantURL)
}
