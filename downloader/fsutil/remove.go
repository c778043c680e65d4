package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vexide/arm-toolchain/downloader/core"
)

// lstat is swapped out in tests.
var lstat = os.Lstat

type entryKind int

const (
	kindFile entryKind = iota
	kindDir
	kindSymlink
)

type removeEntry struct {
	path string
	kind entryKind
	size int64
}

// RemoveDir deletes root and everything below it, children before parents.
// The total reported in RemoveStart counts regular-file bytes only. The tree
// is enumerated up front, cancellation is checked during enumeration and the
// delete phase runs to completion once started. A missing root removes
// nothing and is not an error.
func RemoveDir(ctx context.Context, root string, sink core.RemoveSink) (int64, error) {
	if _, err := lstat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	entries, total, err := enumerate(ctx, root)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sink.Emit(core.RemoveStart{Total: total})

	var removed int64
	for _, e := range entries {
		switch e.kind {
		case kindSymlink:
			err = removeSymlink(e.path)
		default:
			err = os.Remove(e.path)
		}
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e.path, err)
		}
		if e.kind == kindFile {
			removed += e.size
			sink.Emit(core.RemoveProgress{Removed: removed})
		}
	}

	sink.Emit(core.RemoveEnd{})
	return removed, nil
}

// enumerate lists root's tree in post-order.
func enumerate(ctx context.Context, root string) ([]removeEntry, int64, error) {
	var entries []removeEntry
	var total int64

	var visit func(path string) error
	visit = func(path string) error {
		if err := core.CheckCancelled(ctx); err != nil {
			return err
		}

		info, err := lstat(path)
		if err != nil {
			return err
		}

		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			entries = append(entries, removeEntry{path: path, kind: kindSymlink})
		case mode.IsDir():
			children, err := os.ReadDir(path)
			if err != nil {
				return fmt.Errorf("failed to read directory %s: %w", path, err)
			}
			for _, child := range children {
				if err := visit(filepath.Join(path, child.Name())); err != nil {
					return err
				}
			}
			entries = append(entries, removeEntry{path: path, kind: kindDir})
		default:
			size := int64(0)
			if mode.IsRegular() {
				size = info.Size()
			}
			total += size
			entries = append(entries, removeEntry{path: path, kind: kindFile, size: size})
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
