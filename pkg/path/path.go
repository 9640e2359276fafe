package path

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("not found in any parent directory")

// FindRoot walks up from startDir and returns the first directory that
// contains targetName as a directory (isDir) or a regular file.
func FindRoot(startDir, targetName string, isDir bool) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		if exists(filepath.Join(dir, targetName), isDir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s from %s: %w", targetName, startDir, ErrNotFound)
		}
		dir = parent
	}
}

func exists(p string, isDir bool) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir() == isDir
}
