// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles returns the full paths of the regular files directly inside dir
// whose names end with suffix, sorted by file name. Subdirectories are not
// descended into.
func ListFiles(dir string, suffix string) ([]string, error) {
	if suffix == "" {
		panic("suffix must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// EnsureDirs creates every directory that does not exist yet and returns
// the ones it created.
func EnsureDirs(dirs ...string) ([]string, error) {
	var created []string
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return created, fmt.Errorf("failed to stat %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}
