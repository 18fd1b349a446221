package distiller

import (
	"os"
	"path/filepath"
	"strings"

	gitgitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher evaluates .gitignore files between the source root and each
// entry. Patterns are cached per directory so a deep tree does not re-read
// the same .gitignore on every visit.
type ignoreMatcher struct {
	absRoot string
	cache   map[string][]gitgitignore.Pattern
}

func newIgnoreMatcher(absRoot string) *ignoreMatcher {
	return &ignoreMatcher{absRoot: absRoot, cache: map[string][]gitgitignore.Pattern{}}
}

// dirsForRel returns the directories from "." down to the directory of rel.
func dirsForRel(rel string) []string {
	dirs := []string{"."}
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." || dir == "" {
		return dirs
	}
	cur := ""
	for _, part := range strings.Split(dir, "/") {
		if cur == "" {
			cur = part
		} else {
			cur = cur + "/" + part
		}
		dirs = append(dirs, cur)
	}
	return dirs
}

func (m *ignoreMatcher) patternsFor(dir string) []gitgitignore.Pattern {
	if cached, ok := m.cache[dir]; ok {
		return cached
	}
	var patterns []gitgitignore.Pattern
	b, err := os.ReadFile(filepath.Join(m.absRoot, filepath.FromSlash(dir), ".gitignore"))
	if err == nil {
		var base []string
		if dir != "." {
			base = strings.Split(dir, "/")
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitgitignore.ParsePattern(line, base))
		}
	}
	m.cache[dir] = patterns
	return patterns
}

// Ignored reports whether the relative POSIX path matches .gitignore rules.
func (m *ignoreMatcher) Ignored(rel string, isDir bool) bool {
	if rel == "." || rel == "" {
		return false
	}
	var patterns []gitgitignore.Pattern
	for _, dir := range dirsForRel(rel) {
		patterns = append(patterns, m.patternsFor(dir)...)
	}
	if len(patterns) == 0 {
		return false
	}
	matcher := gitgitignore.NewMatcher(patterns)
	return matcher.Match(strings.Split(rel, "/"), isDir)
}
