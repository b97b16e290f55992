// Package snapshot persists size snapshots as JSON baseline files and
// derives the cache identity (file name, restore-key prefix) for a build
// directory.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

// ErrNoBaseline indicates that no baseline snapshot exists.
var ErrNoBaseline = errors.New("no baseline snapshot")

// ErrCorrupt indicates that a baseline snapshot file exists but could not
// be parsed. Callers treat it as a cache miss and report changes as
// present, since the previous sizes are unknowable.
var ErrCorrupt = errors.New("corrupt baseline snapshot")

// Save writes the snapshot to path as pretty-printed JSON, creating parent
// directories as needed. The write is atomic (temp file plus rename) so a
// crashed run never leaves a truncated baseline behind.
func Save(path string, snap types.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	if snap == nil {
		snap = types.Snapshot{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	return nil
}

// Load reads a snapshot from path. A missing file returns ErrNoBaseline;
// an unparsable file returns ErrCorrupt. Both are expected conditions, not
// hard failures.
func Load(path string) (types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoBaseline, path)
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, path)
	}
	return snap, nil
}

// pathSanitizer collapses path separators and other awkward characters so
// a directory identity is usable in file names and cache keys.
var pathSanitizer = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")

// dirIdentity derives a deterministic identity for a build directory. The
// sanitized name keeps identities readable; the FNV hash of the original
// path keeps "a/b" and "a-b" from colliding after sanitization.
func dirIdentity(dir string) string {
	clean := strings.Trim(filepath.ToSlash(filepath.Clean(dir)), "/")
	h := fnv.New32a()
	_, _ = h.Write([]byte(clean))
	return fmt.Sprintf("%s-%08x", pathSanitizer.Replace(clean), h.Sum32())
}

// CacheFileName returns the baseline file name for a build directory.
func CacheFileName(dir string) string {
	return "sizewatch-" + dirIdentity(dir) + ".json"
}

// CacheKeyPrefix returns the restore-key prefix for a build directory.
// Appending a commit SHA yields the primary save key; the bare prefix is
// the fallback used to find the most recent baseline entry.
func CacheKeyPrefix(dir string) string {
	return "sizewatch-" + dirIdentity(dir) + "-"
}
