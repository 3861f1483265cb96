package file

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindMatching walks dir and returns the files accepted by match, sorted.
// Hidden files and directories are skipped.
func FindMatching(dir string, match func(path string) bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && match(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	return found, nil
}
