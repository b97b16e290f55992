// Package cachestore abstracts the CI cache used to carry baseline
// snapshots between workflow runs. Two backends exist: the GitHub Actions
// cache service for hosted CI, and a local Badger store for self-hosted
// runners and development.
package cachestore

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Restore when neither the primary key nor any
// fallback prefix matched a saved entry.
var ErrCacheMiss = errors.New("cache miss")

// Store is a named-blob cache. Keys are opaque strings; a save under a key
// records the contents of the given paths, and a restore writes them back.
type Store interface {
	// Restore fetches the entry saved under primaryKey, or failing that
	// the most recently saved entry whose key matches one of
	// fallbackPrefixes, and writes its contents to the given paths.
	// It returns the matched key, or ErrCacheMiss.
	Restore(ctx context.Context, paths []string, primaryKey string, fallbackPrefixes []string) (string, error)

	// Save stores the current contents of paths under key.
	Save(ctx context.Context, paths []string, key string) error
}
