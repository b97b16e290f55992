package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/config"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/logging"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/report"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/scanner"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/types"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch build directories and report size changes live",
	Long: `Watch the configured build directories and print a size report to the
terminal whenever their contents change. The first scan after startup
becomes the baseline; later scans are diffed against it.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "delay after the last change before rescanning")
	rootCmd.AddCommand(watchCmd)
}

// runWatch is the watch command handler.
func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Logging.Level); err != nil {
		return err
	}
	logger := logging.Get("watch")

	w, err := watcher.New(watchDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range cfg.Directories {
		if err := w.Watch(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	session := newWatchSession(cfg)
	out, err := session.rescan()
	if err != nil {
		return err
	}
	fmt.Print(out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("watching for changes", "directories", cfg.Directories)

	w.Run(ctx, func() {
		out, err := session.rescan()
		if err != nil {
			logger.Warn("rescan failed", "error", err)
			return
		}
		fmt.Print(out)
	})

	return nil
}

// watchSession holds the baseline snapshots between rescans. The first
// scan of each directory seeds the baseline; it is never replaced, so
// every report shows drift since the session started.
type watchSession struct {
	cfg       *config.Config
	mu        sync.Mutex
	baselines map[string]types.Snapshot
}

func newWatchSession(cfg *config.Config) *watchSession {
	return &watchSession{
		cfg:       cfg,
		baselines: make(map[string]types.Snapshot),
	}
}

// rescan scans every configured directory and renders a terminal report
// against the session baselines.
func (s *watchSession) rescan() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out string
	for _, dir := range s.cfg.Directories {
		snap, err := scanner.Scan(scanner.Options{Root: dir, AssetsDir: s.cfg.AssetsDir})
		if err != nil {
			return "", err
		}

		base, seen := s.baselines[dir]
		if !seen {
			s.baselines[dir] = snap
		}

		var res *report.Result
		if seen {
			res = report.Diff(snap, base, s.cfg.AssetsDir)
		} else {
			res = report.Diff(snap, nil, s.cfg.AssetsDir)
		}
		out += res.Terminal(report.SectionName(dir)) + "\n"
	}
	return out, nil
}
