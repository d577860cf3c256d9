package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathValidator decides whether a path falls under a reserved system prefix.
// The prefix list is supplied by the caller; nothing is protected by default.
type PathValidator struct {
	protectedPaths []string
}

// NewPathValidator creates a PathValidator for the given reserved prefixes
func NewPathValidator(protected ...string) *PathValidator {
	pv := &PathValidator{}
	for _, p := range protected {
		pv.AddProtectedPath(p)
	}
	return pv
}

// ValidatePathForDeletion is the last check before a file is removed
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a null byte: %q", path)
	}

	if pv.IsProtectedPath(path) {
		return fmt.Errorf("refusing to delete protected path: %s", path)
	}

	return nil
}

// IsProtectedPath reports whether path equals or lies beneath a reserved prefix
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return true
		}
		prefix := protected
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(cleanPath, prefix) {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	if path == "" {
		return
	}
	pv.protectedPaths = append(pv.protectedPaths, filepath.Clean(path))
}

// ProtectedPaths returns a copy of the reserved prefixes
func (pv *PathValidator) ProtectedPaths() []string {
	out := make([]string, len(pv.protectedPaths))
	copy(out, pv.protectedPaths)
	return out
}

// ExclusionSet decides which directories a walk does not descend into.
//
// Fragments that begin with a separator ("/.git", "/var/lib/docker") match
// whole path components anywhere in the path, so "/.git" never matches
// ".github". Bare fragments ("__pycache__") match as plain substrings.
// Roots are absolute directories matched only at the filesystem root.
type ExclusionSet struct {
	components []string
	substrings []string
	roots      []string
}

// NewExclusionSet builds an ExclusionSet, ignoring empty fragments
func NewExclusionSet(fragments []string) *ExclusionSet {
	es := &ExclusionSet{}
	for _, f := range fragments {
		switch {
		case f == "":
		case f[0] == '/' || f[0] == filepath.Separator:
			es.components = append(es.components, strings.TrimRight(filepath.FromSlash(f), string(filepath.Separator)))
		default:
			es.substrings = append(es.substrings, f)
		}
	}
	return es
}

// WithRoots adds absolute directories that are excluded along with everything below them
func (es *ExclusionSet) WithRoots(roots ...string) *ExclusionSet {
	for _, r := range roots {
		if r == "" || !filepath.IsAbs(r) {
			continue
		}
		es.roots = append(es.roots, filepath.Clean(r))
	}
	return es
}

// Matches reports whether rel, a path relative to the walk root written with
// a leading separator, contains an excluded fragment
func (es *ExclusionSet) Matches(rel string) bool {
	if es == nil {
		return false
	}
	sep := string(filepath.Separator)
	if !strings.HasPrefix(rel, sep) {
		rel = sep + rel
	}
	for _, f := range es.components {
		if strings.Contains(rel+sep, f+sep) {
			return true
		}
	}
	for _, f := range es.substrings {
		if strings.Contains(rel, f) {
			return true
		}
	}
	return false
}

// MatchesRoot reports whether the absolute path is an excluded root or lies below one
func (es *ExclusionSet) MatchesRoot(path string) bool {
	if es == nil {
		return false
	}
	for _, r := range es.roots {
		if path == r || strings.HasPrefix(path, strings.TrimRight(r, string(filepath.Separator))+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Len returns the number of fragments and roots
func (es *ExclusionSet) Len() int {
	if es == nil {
		return 0
	}
	return len(es.components) + len(es.substrings) + len(es.roots)
}

// ValidateFragment rejects exclusion fragments that would match everything
func ValidateFragment(fragment string) error {
	if strings.TrimSpace(fragment) == "" {
		return fmt.Errorf("exclusion fragment must not be empty")
	}
	if fragment == "/" || fragment == string(filepath.Separator) {
		return fmt.Errorf("exclusion fragment %q would exclude every directory", fragment)
	}
	return nil
}

// ValidateRoot rejects exclusion roots that are relative or the filesystem root
func ValidateRoot(root string) error {
	if !filepath.IsAbs(root) {
		return fmt.Errorf("exclusion root must be absolute: %q", root)
	}
	if filepath.Dir(filepath.Clean(root)) == filepath.Clean(root) {
		return fmt.Errorf("exclusion root %q would exclude every directory", root)
	}
	return nil
}

// ValidateGlobPattern validates that a glob pattern is safe
func ValidateGlobPattern(pattern string) error {
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}

	_, err := filepath.Match(pattern, "test")
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	return nil
}
