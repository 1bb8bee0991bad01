// Package pathutil is the filesystem collaborator the selection engine
// consumes for path canonicalization. It is deliberately the only place
// path/filepath appears in the engine proper; every other component
// treats paths as opaque strings except through these three functions.
package pathutil

import (
	"path/filepath"
	"strings"
)

// SlashClean collapses runs of "/" and strips a trailing slash, without
// touching "." / ".." segments or resolving against any base directory.
// This is deliberately weaker than Normalize: regex target matching wants
// paths close to the form the user declared them, and SlashClean is the
// only cleanup regex matching gets.
func SlashClean(path string) string {
	if path == "" {
		return path
	}
	var b strings.Builder
	b.Grow(len(path))
	lastSlash := false
	for _, r := range path {
		if r == '/' {
			if lastSlash {
				continue
			}
			lastSlash = true
		} else {
			lastSlash = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	return out
}

// Normalize resolves path to its canonical absolute form. It is idempotent:
// Normalize(Normalize(p)) == Normalize(p).
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.ToSlash(filepath.Clean(abs))
}

// AbsolutePath resolves dir to an absolute path, used by the step directory
// namer to canonicalize its configured root.
func AbsolutePath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
