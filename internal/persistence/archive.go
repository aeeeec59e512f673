package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/soratane/aicity/internal/engine"
)

// Archive writes zstd-compressed JSON snapshots to a directory, one
// file per save, named by tick.
type Archive struct {
	dir string
}

// NewArchive creates the snapshot directory if needed.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Write stores one snapshot as snapshot-<tick>.json.zst.
func (a *Archive) Write(snap engine.Snapshot) (string, error) {
	path := filepath.Join(a.dir, fmt.Sprintf("snapshot-%09d.json.zst", snap.World.Tick))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}
	return path, nil
}

// Read loads one archived snapshot by file path.
func (a *Archive) Read(path string) (engine.Snapshot, error) {
	var snap engine.Snapshot

	f, err := os.Open(path)
	if err != nil {
		return snap, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return snap, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// List returns archived snapshot paths, oldest first.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".zst" {
			out = append(out, filepath.Join(a.dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Prune keeps only the newest keep archives.
func (a *Archive) Prune(keep int) error {
	paths, err := a.List()
	if err != nil {
		return err
	}
	if len(paths) <= keep {
		return nil
	}
	for _, p := range paths[:len(paths)-keep] {
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}
