package cachestore

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// apiVersion is the Actions cache service API version header.
const apiVersion = "application/json;api-version=6.0-preview.1"

// Actions talks to the GitHub Actions cache service. Cache entries are
// gzipped tar archives of the saved paths; entry lookup happens
// server-side with primary-plus-fallback restore keys, newest first.
type Actions struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewActions creates a client for the Actions cache service. baseURL and
// token come from the ACTIONS_CACHE_URL and ACTIONS_RUNTIME_TOKEN
// environment the runner injects.
func NewActions(baseURL, token string) *Actions {
	return &Actions{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		token:   token,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// cacheVersion derives the version discriminator scoping entries to a
// particular path set, mirroring what actions/cache does.
func cacheVersion(paths []string) string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	sum := sha256.Sum256([]byte(strings.Join(names, "|")))
	return hex.EncodeToString(sum[:])
}

type queryResponse struct {
	CacheKey        string `json:"cacheKey"`
	ArchiveLocation string `json:"archiveLocation"`
}

type reserveRequest struct {
	Key       string `json:"key"`
	Version   string `json:"version"`
	CacheSize int64  `json:"cacheSize"`
}

type reserveResponse struct {
	CacheID int64 `json:"cacheId"`
}

type commitRequest struct {
	Size int64 `json:"size"`
}

// Restore queries the cache service with the primary key and fallback
// prefixes, downloads the matched archive, and unpacks it to paths.
func (a *Actions) Restore(ctx context.Context, paths []string, primaryKey string, fallbackPrefixes []string) (string, error) {
	keys := append([]string{primaryKey}, fallbackPrefixes...)
	endpoint := fmt.Sprintf("%s_apis/artifactcache/cache?keys=%s&version=%s",
		a.baseURL, url.QueryEscape(strings.Join(keys, ",")), cacheVersion(paths))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying cache service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return "", ErrCacheMiss
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("cache query failed: %s", resp.Status)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return "", fmt.Errorf("decoding cache query response: %w", err)
	}

	if err := a.download(ctx, qr.ArchiveLocation, paths); err != nil {
		return "", err
	}
	return qr.CacheKey, nil
}

// Save archives paths and uploads them under key via the reserve, upload,
// commit sequence the cache service expects.
func (a *Actions) Save(ctx context.Context, paths []string, key string) error {
	archive, err := packArchive(paths)
	if err != nil {
		return err
	}

	cacheID, err := a.reserve(ctx, key, cacheVersion(paths), int64(len(archive)))
	if err != nil {
		return err
	}
	if err := a.upload(ctx, cacheID, archive); err != nil {
		return err
	}
	return a.commit(ctx, cacheID, int64(len(archive)))
}

func (a *Actions) reserve(ctx context.Context, key, version string, size int64) (int64, error) {
	body, err := json.Marshal(reserveRequest{Key: key, Version: version, CacheSize: size})
	if err != nil {
		return 0, err
	}

	endpoint := a.baseURL + "_apis/artifactcache/caches"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	a.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reserving cache entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return 0, fmt.Errorf("cache entry already exists for key %s", key)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("cache reserve failed: %s", resp.Status)
	}

	var rr reserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return 0, fmt.Errorf("decoding reserve response: %w", err)
	}
	return rr.CacheID, nil
}

func (a *Actions) upload(ctx context.Context, cacheID int64, archive []byte) error {
	endpoint := fmt.Sprintf("%s_apis/artifactcache/caches/%d", a.baseURL, cacheID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(archive))
	if err != nil {
		return err
	}
	a.setHeaders(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/*", len(archive)-1))

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("uploading cache archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cache upload failed: %s", resp.Status)
	}
	return nil
}

func (a *Actions) commit(ctx context.Context, cacheID, size int64) error {
	body, err := json.Marshal(commitRequest{Size: size})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s_apis/artifactcache/caches/%d", a.baseURL, cacheID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	a.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("committing cache entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cache commit failed: %s", resp.Status)
	}
	return nil
}

// download fetches the pre-signed archive URL and unpacks matching entries
// to the requested paths.
func (a *Actions) download(ctx context.Context, location string, paths []string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return err
	}
	// Archive locations are pre-signed; no auth headers.

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading cache archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cache download failed: %s", resp.Status)
	}
	return unpackArchive(resp.Body, paths)
}

func (a *Actions) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Accept", apiVersion)
}

// packArchive builds a gzipped tar of paths. Entries are stored under
// their base names, matching how Local keys blobs.
func packArchive(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		hdr := &tar.Header{
			Name: filepath.Base(p),
			Mode: 0o644,
			Size: int64(len(data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, err
		}
		if _, err := tw.Write(data); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unpackArchive extracts entries matching the requested base names.
func unpackArchive(r io.Reader, paths []string) error {
	byName := make(map[string]string, len(paths))
	for _, p := range paths {
		byName[filepath.Base(p)] = p
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("reading cache archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading cache archive: %w", err)
		}

		dest, ok := byName[filepath.Base(hdr.Name)]
		if !ok {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("reading cache archive entry %s: %w", hdr.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}
}

// Ensure Actions implements Store.
var _ Store = (*Actions)(nil)
