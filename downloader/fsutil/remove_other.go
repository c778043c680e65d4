//go:build !windows

package fsutil

import "os"

// removeSymlink deletes a link without touching its target.
func removeSymlink(path string) error {
	return os.Remove(path)
}
