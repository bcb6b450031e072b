package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compiledPattern is a validated doublestar glob with rsync-style anchoring.
type compiledPattern struct {
	glob     string
	original string
	dirOnly  bool // pattern ends with /
}

// compilePattern validates pattern and normalises its anchoring. A leading
// "/" or any inner "/" anchors the pattern at the sync root; otherwise it
// matches the entry name at any depth.
func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	anchored := false
	if strings.HasPrefix(pattern, "/") {
		anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		anchored = true
	}

	if !anchored {
		pattern = "**/" + pattern
	}

	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", cp.original)
	}
	cp.glob = pattern
	return cp, nil
}

func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	ok, err := doublestar.Match(cp.glob, filepath.ToSlash(relPath))
	return err == nil && ok
}
