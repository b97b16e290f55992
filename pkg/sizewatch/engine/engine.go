// Package engine orchestrates a sizewatch run: per configured directory it
// restores the cached baseline, scans the current build output, computes
// the size diff, persists the new snapshot, and assembles the Markdown
// report. Directories are processed strictly one at a time; the work is
// I/O-bound and shares one cache store, so there is nothing to overlap.
package engine

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/cachestore"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/logging"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/report"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/runcontext"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/scanner"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/snapshot"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
)

// Options configures an Engine.
type Options struct {
	// Directories are the build output directories to analyze.
	Directories []string

	// AssetsDir is the directory name inside which hashed filenames are
	// normalized.
	AssetsDir string

	// BaselineBranch is the branch whose runs save baselines; all other
	// runs restore them.
	BaselineBranch string

	// CacheDir is where baseline snapshot files are written.
	CacheDir string

	// Store carries snapshots between CI runs. Nil disables cross-run
	// caching; snapshots are still written to CacheDir.
	Store cachestore.Store
}

// Result is the outcome of a run.
type Result struct {
	// HasChanges is true when any directory's current sizes differ from
	// its baseline.
	HasChanges bool

	// Report is the rendered Markdown document.
	Report string

	// Sections holds the per-directory diffs, in configuration order.
	Sections []report.Section
}

// Engine runs the size report pipeline.
type Engine struct {
	opts Options
	log  *log.Logger
}

// New creates an Engine. Configuration errors are reported here, before
// any I/O.
func New(opts Options) (*Engine, error) {
	if len(opts.Directories) == 0 {
		return nil, errors.New("no directories configured")
	}
	if opts.CacheDir == "" {
		return nil, errors.New("cache directory not configured")
	}
	return &Engine{
		opts: opts,
		log:  logging.Get("engine"),
	}, nil
}

// Run processes every configured directory in order and assembles the
// report. A missing build directory fails the run; cache store failures
// are soft and only logged.
func (e *Engine) Run(ctx context.Context, rc runcontext.Context) (*Result, error) {
	logger := e.log.With("run", uuid.NewString()[:8])

	res := &Result{}
	for _, dir := range e.opts.Directories {
		section, changed, err := e.processDir(ctx, rc, dir, logger)
		if err != nil {
			return nil, err
		}
		res.Sections = append(res.Sections, section)
		res.HasChanges = res.HasChanges || changed
	}

	res.Report = report.Document(res.Sections)
	logger.Info("run complete",
		"directories", len(res.Sections),
		"has_changes", res.HasChanges)
	return res, nil
}

// processDir runs the pipeline for a single directory and returns its
// report section and whether its sizes changed.
func (e *Engine) processDir(ctx context.Context, rc runcontext.Context, dir string, logger *log.Logger) (report.Section, bool, error) {
	cachePath := filepath.Join(e.opts.CacheDir, snapshot.CacheFileName(dir))
	keyPrefix := snapshot.CacheKeyPrefix(dir)
	primaryKey := keyPrefix + rc.SHA

	onBaseline := rc.IsBaseline(e.opts.BaselineBranch)
	if e.opts.Store != nil && !onBaseline {
		matched, err := e.opts.Store.Restore(ctx, []string{cachePath}, primaryKey, []string{keyPrefix})
		switch {
		case errors.Is(err, cachestore.ErrCacheMiss):
			logger.Info("no cached baseline", "dir", dir)
		case err != nil:
			logger.Warn("cache restore failed, continuing without baseline", "dir", dir, "error", err)
		default:
			logger.Debug("baseline restored", "dir", dir, "key", matched)
		}
	}

	base, forcedChange, err := e.loadBaseline(cachePath, logger)
	if err != nil {
		return report.Section{}, false, err
	}

	current, err := scanner.Scan(scanner.Options{Root: dir, AssetsDir: e.opts.AssetsDir})
	if err != nil {
		return report.Section{}, false, err
	}

	diff := report.Diff(current, base, e.opts.AssetsDir)
	changed := diff.HasChanges || forcedChange

	// Persist unconditionally so the next run always has a fresh
	// baseline attempt, even when nothing changed.
	if err := snapshot.Save(cachePath, current); err != nil {
		logger.Warn("failed to persist snapshot", "dir", dir, "error", err)
	} else if e.opts.Store != nil && onBaseline {
		if err := e.opts.Store.Save(ctx, []string{cachePath}, primaryKey); err != nil {
			logger.Warn("cache save failed", "dir", dir, "key", primaryKey, "error", err)
		} else {
			logger.Debug("baseline saved", "dir", dir, "key", primaryKey)
		}
	}

	logger.Info("directory analyzed",
		"dir", dir,
		"files", len(current),
		"total", current.TotalSize(),
		"changed", changed)

	return report.Section{Name: report.SectionName(dir), Result: diff}, changed, nil
}

// loadBaseline reads the cached snapshot. Missing and corrupt files are
// both cache misses; a corrupt file additionally forces the changed flag
// because the previous sizes are unknowable.
func (e *Engine) loadBaseline(cachePath string, logger *log.Logger) (types.Snapshot, bool, error) {
	base, err := snapshot.Load(cachePath)
	switch {
	case err == nil:
		return base, false, nil
	case errors.Is(err, snapshot.ErrCorrupt):
		logger.Warn("corrupt baseline snapshot, treating as cache miss", "path", cachePath)
		return nil, true, nil
	case errors.Is(err, snapshot.ErrNoBaseline):
		return nil, false, nil
	default:
		// Unreadable for another reason (permissions). Not worth
		// failing a CI job over a lost baseline.
		logger.Warn("could not read baseline snapshot", "path", cachePath, "error", err)
		return nil, false, nil
	}
}
