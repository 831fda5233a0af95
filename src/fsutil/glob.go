// Package fsutil implements the fileset / glob matcher collaborator: Ant
// style "*"/"**" pattern matching and deterministic directory expansion.
package fsutil

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/karrick/godirwalk"
)

// Matcher implements core.GlobMatcher.
type Matcher struct{}

// NewMatcher constructs the default Ant-style glob matcher.
func NewMatcher() *Matcher { return &Matcher{} }

// Matches reports whether path, made relative to root, matches pattern.
// "*" matches within one path segment; "**" matches any number of
// segments (including zero). Matching is case-sensitive.
func (Matcher) Matches(pattern, root, p string) bool {
	rel := relativeTo(root, p)
	re := compileGlob(pattern)
	return re.MatchString(rel)
}

// Matches is the package-level convenience form of Matcher{}.Matches.
func Matches(pattern, root, p string) bool {
	return Matcher{}.Matches(pattern, root, p)
}

var globCache = map[string]*regexp.Regexp{}

func compileGlob(pattern string) *regexp.Regexp {
	if re, ok := globCache[pattern]; ok {
		return re
	}
	re := regexp.MustCompile("^" + globToRegexp(pattern) + "$")
	globCache[pattern] = re
	return re
}

// globToRegexp translates an Ant-style glob into a regular expression body
// (without anchors). Segments are processed one "/"-delimited piece at a
// time so that "**" can be recognised as a whole segment.
func globToRegexp(pattern string) string {
	segments := strings.Split(pattern, "/")
	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		if seg == "**" {
			if i == len(segments)-1 {
				parts = append(parts, ".*")
			} else {
				parts = append(parts, "(?:.*/)?")
			}
			continue
		}
		parts = append(parts, segmentToRegexp(seg))
		if i != len(segments)-1 {
			parts = append(parts, "/")
		}
	}
	return strings.Join(parts, "")
}

func segmentToRegexp(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		switch r {
		case '*':
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

func relativeTo(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}

// A Fileset names a set of include globs and exclude globs to expand
// against a directory tree, rooted at a project path.
type Fileset struct {
	Includes      []string
	Excludes      []string
	IncludeHidden bool
}

// Expand walks root and returns every file matching at least one Includes
// glob and no Excludes glob, relative to root, in a deterministic order:
// directories are visited in the walker's own (lexically sorted) order and
// each directory's files are sorted before appending.
func Expand(root string, fs Fileset) ([]string, error) {
	var matches []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: false, // sorted traversal keeps Expand deterministic
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, osPathname)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !fs.IncludeHidden && isHiddenOrTemp(rel) {
				return nil
			}
			if !matchesAny(rel, fs.Includes) {
				return nil
			}
			if matchesAny(rel, fs.Excludes) {
				return nil
			}
			matches = append(matches, rel)
			return nil
		},
	})
	return matches, err
}

func matchesAny(rel string, globs []string) bool {
	for _, g := range globs {
		if compileGlob(g).MatchString(rel) {
			return true
		}
	}
	return false
}

func isHiddenOrTemp(rel string) bool {
	_, file := path.Split(rel)
	return strings.HasPrefix(file, ".") || (strings.HasPrefix(file, "#") && strings.HasSuffix(file, "#")) || strings.HasSuffix(file, "~")
}
