package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/cachestore"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/comment"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/config"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/engine"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/logging"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/report"
	"github.com/jamesainslie/sizewatch/pkg/sizewatch/runcontext"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Scan build directories and report size changes",
	Long: `Scan the configured build directories, diff them against the cached
baseline, and emit the Markdown report. Inside GitHub Actions the report
also becomes the job summary and, on pull requests with changes, a PR
comment. This is what running sizewatch with no subcommand does.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// inActions reports whether we are running inside a GitHub Actions job.
func inActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// runReport is the main report command handler.
func runReport(_ *cobra.Command, _ []string) error {
	err := reportOnce()
	if err != nil && inActions() {
		// Surface the failure as a workflow annotation as well as the
		// exit status.
		githubactions.New().Errorf("sizewatch: %s", err)
	}
	return err
}

func reportOnce() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Logging.Level); err != nil {
		return err
	}
	logger := logging.Get("cli")

	cacheDir := cfg.Cache.Dir
	if cacheDir == "" {
		cacheDir = config.DefaultCacheDir()
	}

	store, closeStore, err := buildStore(cfg, cacheDir)
	if err != nil {
		return err
	}
	defer closeStore()

	eng, err := engine.New(engine.Options{
		Directories:    cfg.Directories,
		AssetsDir:      cfg.AssetsDir,
		BaselineBranch: cfg.BaselineBranch,
		CacheDir:       cacheDir,
		Store:          store,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	rc := runcontext.FromEnv()

	res, err := eng.Run(ctx, rc)
	if err != nil {
		return err
	}

	if inActions() {
		action := githubactions.New()
		action.AddStepSummary(res.Report)
		action.SetOutput("has-changes", strconv.FormatBool(res.HasChanges))
	} else {
		fmt.Println(res.Report)
	}

	if cfg.Comment && rc.IsPullRequest() && res.HasChanges {
		postComment(ctx, rc, res.Report, logger)
	}
	return nil
}

// postComment upserts the PR comment. Comment API failures never fail the
// job; the report already landed in the step summary.
func postComment(ctx context.Context, rc runcontext.Context, body string, logger *log.Logger) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		logger.Warn("GITHUB_TOKEN not set, skipping PR comment")
		return
	}
	up := comment.NewFromToken(ctx, token, report.Marker)
	if err := up.Upsert(ctx, rc.Owner, rc.Repo, rc.PRNumber, body); err != nil {
		logger.Warn("failed to post PR comment", "error", err)
	}
}

// buildStore constructs the configured cache store. The returned closer is
// a no-op for backends without resources to release.
func buildStore(cfg *config.Config, cacheDir string) (cachestore.Store, func(), error) {
	noop := func() {}
	switch cfg.Cache.Backend {
	case "none":
		return nil, noop, nil
	case "actions":
		baseURL := os.Getenv("ACTIONS_CACHE_URL")
		token := os.Getenv("ACTIONS_RUNTIME_TOKEN")
		if baseURL == "" || token == "" {
			logging.Get("cli").Warn("Actions cache service unavailable, continuing without baseline cache")
			return nil, noop, nil
		}
		return cachestore.NewActions(baseURL, token), noop, nil
	case "local":
		local, err := cachestore.OpenLocal(filepath.Join(cacheDir, "store"))
		if err != nil {
			return nil, noop, err
		}
		return local, func() { _ = local.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("invalid cache backend %q", cfg.Cache.Backend)
	}
}
