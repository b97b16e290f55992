// Package config provides configuration management for sizewatch.
package config

// Default configuration values for sizewatch.
const (
	// DefaultAssetsDir is the directory name inside which hashed asset
	// filenames are normalized.
	DefaultAssetsDir = "assets"

	// DefaultBaselineBranch is the branch whose build output is the
	// comparison reference.
	DefaultBaselineBranch = "main"

	// DefaultCacheBackend selects where baseline snapshots are stored
	// between runs ("actions" or "local").
	DefaultCacheBackend = "local"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"
)

// ValidCacheBackends are the accepted cache.backend values.
var ValidCacheBackends = []string{"actions", "local", "none"}
