// Package pathmatch normalizes filesystem paths to repository-relative POSIX
// strings and evaluates them against glob and directory-prefix rule sets.
package pathmatch

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolutionError reports a path that does not resolve to a descendant of the
// expected root.
type ResolutionError struct {
	Path string
	Root string
}

func (e *ResolutionError) Error() string {
	return "path outside root: " + e.Path + " (root: " + e.Root + ")"
}

// RelPosix returns the POSIX-style path of p relative to root. Both inputs are
// resolved to absolute, symlink-independent form before comparison, so relative
// inputs such as "../proj" behave the same as their absolute equivalents.
func RelPosix(p, root string) (string, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", &ResolutionError{Path: p, Root: root}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &ResolutionError{Path: p, Root: root}
	}
	absPath = canonicalize(absPath)
	absRoot = canonicalize(absRoot)

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", &ResolutionError{Path: absPath, Root: absRoot}
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", &ResolutionError{Path: absPath, Root: absRoot}
	}
	return rel, nil
}

// canonicalize resolves symlinks where possible. Paths that do not exist yet
// (e.g. a destination about to be created) are left as absolute paths.
func canonicalize(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Normalize rewrites a config pattern to forward slashes with no leading "./"
// and no trailing separator.
func Normalize(pattern string) string {
	p := strings.TrimSpace(pattern)
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.TrimRight(p, "/")
}

// Valid reports whether the pattern is syntactically valid after
// normalization. Non-wildcard patterns are always valid.
func Valid(pattern string) bool {
	p := Normalize(pattern)
	if !hasWildcards(p) {
		return true
	}
	return doublestar.ValidatePattern(p)
}

func hasWildcards(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// MatchFiles reports whether rel matches any of the file patterns, either
// exactly or by glob. A wildcard pattern without a path separator also matches
// against the final path segment, so "*.log" matches logs in any directory.
func MatchFiles(rel string, patterns []string) bool {
	for _, raw := range patterns {
		pat := Normalize(raw)
		if pat == "" {
			continue
		}
		if !hasWildcards(pat) {
			if rel == pat {
				return true
			}
			continue
		}
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
		if !strings.Contains(pat, "/") {
			if ok, err := doublestar.Match(pat, path.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// MatchDirs reports whether rel is the named directory, lives under it, or
// matches a glob directory pattern (with an implicit "/**" suffix).
func MatchDirs(rel string, patterns []string) bool {
	for _, raw := range patterns {
		pat := Normalize(raw)
		if pat == "" {
			continue
		}
		if !hasWildcards(pat) {
			if rel == pat || strings.HasPrefix(rel, pat+"/") {
				return true
			}
			continue
		}
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat+"/**", rel); err == nil && ok {
			return true
		}
	}
	return false
}
