// Package types provides core data types for the sizewatch size reporter.
// It defines the per-file size record, the snapshot persisted as a cache
// baseline, and size formatting helpers shared across the tool.
package types

import "github.com/dustin/go-humanize"

// FileStat records the size of a single file within a build directory.
type FileStat struct {
	// File is the slash-separated path relative to the scanned directory.
	File string `json:"file"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Snapshot is the recorded set of (file, size) pairs for one directory at
// one point in time. It is persisted in file-path order but semantically is
// a mapping from path to size.
type Snapshot []FileStat

// ByFile returns the snapshot as a path-to-size map.
// Duplicate paths are not expected in well-formed snapshots; when present,
// the last entry wins.
func (s Snapshot) ByFile() map[string]int64 {
	m := make(map[string]int64, len(s))
	for _, fs := range s {
		m[fs.File] = fs.Size
	}
	return m
}

// TotalSize returns the sum of all file sizes in the snapshot.
func (s Snapshot) TotalSize() int64 {
	var total int64
	for _, fs := range s {
		total += fs.Size
	}
	return total
}

// FormatSize converts a byte count to a human-readable string using SI
// units ("100 B", "1.5 kB"). SI matches how bundlers report asset sizes.
func FormatSize(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}
