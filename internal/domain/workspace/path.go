package workspace

import (
	"errors"
	"path/filepath"
	"strings"
)

// NormalizeRoot cleans a workspace root path and checks that it is absolute.
// Relative paths and paths containing traversal segments are rejected so
// that a workspace can never escape its declared root.
func NormalizeRoot(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", errors.New("must not be empty")
	}
	if strings.Contains(p, "..") {
		return "", errors.New("must not contain traversal segments")
	}

	p = filepath.Clean(p)
	if !filepath.IsAbs(p) {
		return "", errors.New("must be an absolute path")
	}
	return p, nil
}
