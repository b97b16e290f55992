// Package report computes per-file size diffs between snapshots and
// renders them as deterministic Markdown tables for pull-request comments
// and job summaries.
package report

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/normalize"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

// Marker is the hidden HTML comment identifying sizewatch report comments.
// An existing PR comment containing it is updated in place instead of
// posting a duplicate.
const Marker = "<!-- sizewatch:report -->"

// Delta markers for files without a numeric size change.
const (
	markerNewFile     = "new file"
	markerRemovedFile = "removed file"
	markerNoChange    = "no change"

	indicatorIncrease = "📈"
	indicatorDecrease = "📉"
)

// Presentation weights: asset-directory files first, then JS bundles.
const (
	assetWeight  = 2
	scriptWeight = 1
)

// scriptExts are the JS-like extensions surfaced first in reports.
var scriptExts = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
}

// Row is one line of a diff table. Sizes default to zero when the file is
// absent from the corresponding snapshot.
type Row struct {
	File     string
	BaseSize int64
	HeadSize int64
	Delta    string
}

// Result is the computed diff for one directory.
type Result struct {
	Rows        []Row
	TotalBase   int64
	TotalHead   int64
	HasBaseline bool
	HasChanges  bool
}

// priority assigns the presentation weight for a file path.
func priority(file, assetsDir string) int {
	p := 0
	if normalize.InAssets(file, assetsDir) {
		p += assetWeight
	}
	if scriptExts[strings.ToLower(path.Ext(file))] {
		p += scriptWeight
	}
	return p
}

// SortFiles orders file paths by priority descending, ties broken by
// ascending lexicographic path. The order is total and deterministic, so
// sorting an already-sorted slice is a no-op.
func SortFiles(files []string, assetsDir string) {
	sort.Slice(files, func(i, j int) bool {
		pi, pj := priority(files[i], assetsDir), priority(files[j], assetsDir)
		if pi != pj {
			return pi > pj
		}
		return files[i] < files[j]
	})
}

// Diff compares the current snapshot against a baseline. A nil base means
// no baseline exists (first run or cache miss); every file then counts as
// new. The returned rows cover the union of both snapshots' paths, so no
// file is silently dropped.
func Diff(current, base types.Snapshot, assetsDir string) *Result {
	cur := current.ByFile()

	hasBaseline := base != nil
	var baseMap map[string]int64
	if hasBaseline {
		baseMap = base.ByFile()
	}

	union := make(map[string]bool, len(cur)+len(baseMap))
	for f := range cur {
		union[f] = true
	}
	for f := range baseMap {
		union[f] = true
	}

	files := make([]string, 0, len(union))
	for f := range union {
		files = append(files, f)
	}
	SortFiles(files, assetsDir)

	res := &Result{
		Rows:        make([]Row, 0, len(files)),
		HasBaseline: hasBaseline,
	}
	for _, f := range files {
		headSize := cur[f]
		baseSize := baseMap[f]
		res.Rows = append(res.Rows, Row{
			File:     f,
			BaseSize: baseSize,
			HeadSize: headSize,
			Delta:    FormatDelta(headSize, baseSize),
		})
		res.TotalBase += baseSize
		res.TotalHead += headSize
		if headSize != baseSize {
			res.HasChanges = true
		}
	}
	return res
}

// FormatDelta renders the size change from baseSize to headSize. The exact
// strings are part of the report contract: equal sizes are no change
// (zero-byte files included), a zero baseline is a new file, a zero head
// is a removed file, and anything else is a signed byte delta with a
// percentage and direction indicator. Equality is checked first so a file
// that is empty in both snapshots is not reported as new.
func FormatDelta(headSize, baseSize int64) string {
	switch {
	case headSize == baseSize:
		return markerNoChange
	case baseSize == 0:
		return markerNewFile
	case headSize == 0:
		return markerRemovedFile
	}

	delta := headSize - baseSize
	pct := float64(delta) / float64(baseSize) * 100
	if delta > 0 {
		return fmt.Sprintf("+%s (+%.2f%%) %s", types.FormatSize(delta), pct, indicatorIncrease)
	}
	return fmt.Sprintf("-%s (%.2f%%) %s", types.FormatSize(-delta), pct, indicatorDecrease)
}
