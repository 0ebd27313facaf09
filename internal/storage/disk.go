package storage

import (
	"os"
	"path/filepath"
)

// CacheFiles returns the on-disk files that make up a cache at path, including the
// SQLite WAL sidecars. Files that do not exist are still listed; DiskUsageBytes skips them.
func CacheFiles(path string) []string {
	if path == "" || path == ":memory:" {
		return nil
	}
	return []string{path, path + "-wal", path + "-shm"}
}

// DiskUsageBytes returns the total size in bytes of the given paths.
// Each path may be a file or a directory (recursively summed).
// Missing paths are skipped; errors during walk are returned.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
			continue
		}
		err = filepath.Walk(p, func(_ string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi != nil && !fi.IsDir() {
				total += fi.Size()
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
