// Package fsutil moves, copies and removes directory trees with progress
// reporting and cancellation.
package fsutil

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
)

// Swapped out in tests to simulate moves across devices.
var (
	rename        = os.Rename
	isCrossDevice = crossDevice
)

// Move renames src to dst. When the two paths are on different devices the
// tree is copied instead and src is left in place for its owner to discard.
func Move(ctx context.Context, src, dst string, onCopy func(core.CopyProgress)) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}

	logging.LogDebug("🔀 %s and %s are on different devices, copying instead", src, dst)
	return CopyDir(ctx, src, dst, onCopy)
}

// CopyDir mirrors the tree at src into dst. Directories keep their
// permission bits, symlinks are recreated with the same target and regular
// files are copied one at a time. onCopy receives the cumulative byte count
// after each file. Cancellation is checked before every entry.
func CopyDir(ctx context.Context, src, dst string, onCopy func(core.CopyProgress)) error {
	total, err := DirSize(ctx, src)
	if err != nil {
		return err
	}

	type dirMode struct {
		path string
		perm fs.FileMode
	}
	var dirs []dirMode
	var copied int64

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := core.CheckCancelled(ctx); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read symlink %s: %w", path, err)
			}
			if err := os.Symlink(link, target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", target, err)
			}
		case mode.IsDir():
			// Writable until every child is in place.
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			dirs = append(dirs, dirMode{target, mode.Perm()})
		case mode.IsRegular():
			n, err := copyFile(path, target, mode.Perm())
			if err != nil {
				return err
			}
			copied += n
			if onCopy != nil {
				onCopy(core.CopyProgress{Copied: copied, Total: total})
			}
		default:
			logging.LogDebug("⏭️ Skipping special file %s", path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chmod(dirs[i].path, dirs[i].perm); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", dirs[i].path, err)
		}
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	// Creation mode is filtered by umask.
	if err := os.Chmod(dst, perm); err != nil {
		return n, fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	return n, nil
}

// DirSize sums the sizes of regular files under root. Symlinks are not
// followed.
func DirSize(ctx context.Context, root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := core.CheckCancelled(ctx); err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
