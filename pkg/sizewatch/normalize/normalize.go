// Package normalize strips content-hash suffixes from bundler output
// filenames so a file whose only change is a rebuilt hash keeps a stable
// identity across snapshots ("app-Ckdnwnhq.js" and "app-B2kfpW3q.js" are
// the same "app.js").
package normalize

import (
	"path"
	"regexp"
	"strings"
)

// hashSuffix matches a trailing hyphen-delimited content hash of 8 to 10
// characters from [A-Za-z0-9_-] immediately before the final extension.
var hashSuffix = regexp.MustCompile(`-[A-Za-z0-9_-]{8,10}(\.[A-Za-z0-9]+)$`)

// Name removes a content-hash suffix from a file name. Names without a
// matching suffix are returned unchanged. Stripping repeats to a fixed
// point, so Name is idempotent even for names carrying several hash-like
// tokens.
func Name(name string) string {
	for {
		stripped := hashSuffix.ReplaceAllString(name, "$1")
		if stripped == name {
			return name
		}
		name = stripped
	}
}

// Path applies Name to the base name of the slash-separated relPath, but
// only when the path is inside assetsDir. Hash stripping on arbitrary
// filenames produces false positives ("my-file-name.js" would become
// "my.js"), so normalization is opt-in per assets directory.
func Path(relPath, assetsDir string) string {
	if !InAssets(relPath, assetsDir) {
		return relPath
	}
	dir, base := path.Split(relPath)
	return dir + Name(base)
}

// InAssets reports whether the slash-separated relPath has a directory
// component equal to assetsDir. An empty assetsDir disables normalization.
func InAssets(relPath, assetsDir string) bool {
	if assetsDir == "" {
		return false
	}
	dir := path.Dir(relPath)
	if dir == "." {
		return false
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == assetsDir {
			return true
		}
	}
	return false
}
