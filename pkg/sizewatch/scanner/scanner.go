// Package scanner collects file sizes from a build output directory.
// It walks the tree with fastwalk, records every regular file as a
// FileStat with a slash-separated relative path, and normalizes hashed
// asset filenames so snapshots stay comparable across rebuilds.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/normalize"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

// Options configures a directory scan.
type Options struct {
	// Root is the build output directory to scan.
	Root string

	// AssetsDir is the directory name (anywhere under Root) inside which
	// content-hash suffixes are stripped from file names.
	AssetsDir string
}

// Scan walks Root and returns a snapshot of every regular file under it.
// Paths are relative to Root, hash-normalized inside the assets directory,
// and sorted so identical trees always produce identical snapshots.
// A missing or non-directory Root is a hard error.
func Scan(opts Options) (types.Snapshot, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("build directory does not exist: %s", opts.Root)
		}
		return nil, fmt.Errorf("cannot access build directory %s: %w", opts.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", opts.Root)
	}

	var (
		mu   sync.Mutex
		snap types.Snapshot
	)

	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}
	err = fastwalk.Walk(&conf, opts.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(opts.Root, p)
		if err != nil {
			return err
		}
		rel = normalize.Path(filepath.ToSlash(rel), opts.AssetsDir)

		mu.Lock()
		snap = append(snap, types.FileStat{File: rel, Size: fi.Size()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.Root, err)
	}

	sort.Slice(snap, func(i, j int) bool { return snap[i].File < snap[j].File })
	return snap, nil
}
