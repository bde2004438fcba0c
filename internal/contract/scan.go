package contract

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// skippedDirs are dependency and VCS directories never searched for contracts
var skippedDirs = []string{"node_modules", ".git", ".svn", "vendor", "target", "out", "cache"}

// ScanDirectory returns every file under root that rules allow, sorted.
// Hidden files and directories and skippedDirs are not searched.
func ScanDirectory(root string, rules FileRules) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			for _, skip := range skippedDirs {
				if name == skip {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		if rules.Allows(name) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
