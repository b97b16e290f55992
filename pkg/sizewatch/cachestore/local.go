package cachestore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key layout inside the Badger store. Blobs are keyed by their base file
// name so a restore works even when the cache directory moved between
// runs; snapshot file names are unique per build directory.
const (
	metaPrefix = "meta\x00"
	blobPrefix = "blob\x00"
	keySep     = "\x00"
)

// entryMeta records when an entry was saved and which blobs belong to it.
type entryMeta struct {
	SavedAt int64 // UnixNano
	Names   []string
}

func (m *entryMeta) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *entryMeta) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(m)
}

// Local is a Badger-backed Store for self-hosted runners and local runs.
type Local struct {
	db *badger.DB
}

// OpenLocal opens or creates a local cache store at dir.
func OpenLocal(dir string) (*Local, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening local cache store: %w", err)
	}
	return &Local{db: db}, nil
}

// Close closes the store.
func (l *Local) Close() error {
	return l.db.Close()
}

// Save stores the current contents of paths under key.
func (l *Local) Save(_ context.Context, paths []string, key string) error {
	meta := entryMeta{SavedAt: time.Now().UnixNano()}
	blobs := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		name := filepath.Base(p)
		meta.Names = append(meta.Names, name)
		blobs[name] = data
	}

	metaValue, err := meta.encode()
	if err != nil {
		return fmt.Errorf("encoding cache metadata: %w", err)
	}

	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(metaPrefix+key), metaValue); err != nil {
			return err
		}
		for name, data := range blobs {
			if err := txn.Set([]byte(blobPrefix+key+keySep+name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore fetches the entry for primaryKey, or the most recently saved
// entry matching a fallback prefix, and writes its blobs to the given
// paths (matched by base file name).
func (l *Local) Restore(_ context.Context, paths []string, primaryKey string, fallbackPrefixes []string) (string, error) {
	matched, err := l.lookupKey(primaryKey, fallbackPrefixes)
	if err != nil {
		return "", err
	}

	byName := make(map[string]string, len(paths))
	for _, p := range paths {
		byName[filepath.Base(p)] = p
	}

	err = l.db.View(func(txn *badger.Txn) error {
		prefix := []byte(blobPrefix + matched + keySep)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), string(prefix))
			dest, ok := byName[name]
			if !ok {
				continue
			}
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("restoring cache entry %s: %w", matched, err)
	}
	return matched, nil
}

// lookupKey resolves the key to restore: exact primary match first, then
// the newest entry under any fallback prefix.
func (l *Local) lookupKey(primaryKey string, fallbackPrefixes []string) (string, error) {
	var matched string

	err := l.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + primaryKey)); err == nil {
			matched = primaryKey
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		var newest int64
		for _, fp := range fallbackPrefixes {
			prefix := []byte(metaPrefix + fp)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				var meta entryMeta
				if err := item.Value(meta.decode); err != nil {
					continue
				}
				if meta.SavedAt > newest {
					newest = meta.SavedAt
					matched = strings.TrimPrefix(string(item.Key()), metaPrefix)
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("looking up cache key: %w", err)
	}
	if matched == "" {
		return "", ErrCacheMiss
	}
	return matched, nil
}

// Ensure Local implements Store.
var _ Store = (*Local)(nil)
