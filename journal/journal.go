// Package journal persists the index coordinator's point↔node mapping and
// collection status sidecars atomically so a crash mid-write never
// leaves a torn file behind.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Status mirrors index_status.json.
type Status struct {
	Collection  string    `json:"collection"`
	Model       string    `json:"model"`
	VectorSize  int       `json:"vector_size"`
	Distance    string    `json:"distance"`
	PointsCount int       `json:"points_count"`
	IndexedAt   time.Time `json:"indexed_at"`
	Status      string    `json:"status"` // completed, partial, failed
}

const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

var pathLocks sync.Map // map[string]*sync.Mutex, per-path mutual exclusion

func lockFor(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	actual, _ := pathLocks.LoadOrStore(abs, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// writeAtomic marshals v to JSON and writes it to path via a temp file in
// the same directory followed by rename, so readers never observe a
// partially written file.
func writeAtomic(path string, v any) error {
	mu := lockFor(path)
	mu.Lock()
	defer mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("journal: marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".journal-*.json.tmp")
	if err != nil {
		return fmt.Errorf("journal: create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("journal: write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("journal: close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("journal: rename temp file for %s: %w", path, err)
	}
	return nil
}

// WritePointMap writes qdrant_map.json: stringified point_id -> node_id.
func WritePointMap(path string, pointToNode map[uint64]string) error {
	wire := make(map[string]string, len(pointToNode))
	for pointID, nodeID := range pointToNode {
		wire[strconv.FormatUint(pointID, 10)] = nodeID
	}
	return writeAtomic(path, wire)
}

// ReadPointMap reads qdrant_map.json back into point_id -> node_id.
func ReadPointMap(path string) (map[uint64]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	var wire map[string]string
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("journal: unmarshal %s: %w", path, err)
	}
	out := make(map[uint64]string, len(wire))
	for key, nodeID := range wire {
		pointID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("journal: invalid point id %q in %s: %w", key, path, err)
		}
		out[pointID] = nodeID
	}
	return out, nil
}

// WriteStatus writes index_status.json.
func WriteStatus(path string, status Status) error {
	return writeAtomic(path, status)
}

// ReadStatus reads index_status.json.
func ReadStatus(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("journal: unmarshal %s: %w", path, err)
	}
	return &status, nil
}
