//go:build windows

package fsutil

import (
	"os"

	"golang.org/x/sys/windows"
)

// removeSymlink deletes a link without touching its target. Directory
// links must be removed as directories on Windows.
func removeSymlink(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return os.Remove(path)
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	if err := windows.RemoveDirectory(p); err != nil {
		return &os.PathError{Op: "remove", Path: path, Err: err}
	}
	return nil
}
