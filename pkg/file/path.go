package file

import (
	"path/filepath"
	"strings"
)

// StripExt removes the last extension of path. Dotfiles keep their name.
func StripExt(path string) string {
	if path == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filepath.Join(dir, filename)
	}
	return filepath.Join(dir, filename[:lastDot])
}

// SplitSuffix splits "name.suffix" at the last dot. ok is false when there
// is no suffix.
func SplitSuffix(name string) (base, suffix string, ok bool) {
	lastDot := strings.LastIndex(name, ".")
	if lastDot <= 0 || lastDot == len(name)-1 {
		return name, "", false
	}
	return name[:lastDot], name[lastDot+1:], true
}

// HasExt reports whether path ends with one of exts, ignoring case.
func HasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
