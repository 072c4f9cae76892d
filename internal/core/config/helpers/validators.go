package helpers

import (
	"path/filepath"

	"utoipauto/internal/shared/util"
)

// CleanRoot makes a root path comparable: absolute when possible, cleaned otherwise.
func CleanRoot(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// IsPathOverlap reports whether one path equals or contains the other.
func IsPathOverlap(a, b string) bool {
	return util.HasPathPrefix(a, b) || util.HasPathPrefix(b, a)
}
