package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ezemirmul/estimator/internal/models"
)

// SnapshotSource reads the last written JSON snapshot of the full grouping.
// It is the degraded read path used when the store is unreachable.
type SnapshotSource struct {
	path string
}

func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{path: path}
}

func (s *SnapshotSource) Grouped(ctx context.Context) (models.Grouped, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		// No snapshot yet: serve an empty grouping rather than an error.
		return models.Grouped{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var grouped models.Grouped
	if err := json.Unmarshal(data, &grouped); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", s.path, err)
	}
	return grouped, nil
}

// WriteSnapshot serializes the grouping and replaces the snapshot file
// atomically, so a reader never observes a half-written snapshot.
func WriteSnapshot(path string, grouped models.Grouped) error {
	data, err := json.Marshal(grouped)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
