// ABOUTME: Snapshotter interface and JSON-file snapshot backend
// ABOUTME: Persists the state document atomically via write-temp-then-rename

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSnapshot is returned by Load when no snapshot has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshotter persists the serialized state document. Save must not return
// until the document is durable; Load returns ErrNoSnapshot on first run.
type Snapshotter interface {
	Load() ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// FileSnapshotter stores the state document as a single JSON file. Saves write
// to a temp file in the same directory and rename over the target, so a crash
// mid-save never leaves a truncated document.
type FileSnapshotter struct {
	path string
}

// NewFileSnapshotter creates a file-backed snapshotter at the given path.
// Parent directories are created if needed.
func NewFileSnapshotter(path string) (*FileSnapshotter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &FileSnapshotter{path: path}, nil
}

// Load reads the snapshot file, returning ErrNoSnapshot if it does not exist.
func (f *FileSnapshotter) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	return data, nil
}

// Save writes the document durably before returning.
func (f *FileSnapshotter) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot file: %w", err)
	}
	return nil
}

// Close is a no-op for file snapshots.
func (f *FileSnapshotter) Close() error {
	return nil
}
