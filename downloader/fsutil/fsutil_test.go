package fsutil

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexide/arm-toolchain/downloader/core"
)

var errSimulatedCrossDevice = errors.New("simulated cross-device link")

// buildTree creates a small toolchain-like layout and returns the total
// size of its regular files.
func buildTree(t *testing.T, root string) int64 {
	t.Helper()
	files := map[string]string{
		"bin/clang":                            strings.Repeat("c", 3000),
		"bin/llvm-ar":                          strings.Repeat("a", 1200),
		"lib/clang-runtimes/multilib.yaml":     "variants: []\n",
		"lib/clang-runtimes/arm-none-eabi/x.a": strings.Repeat("x", 512),
		"README.md":                            "toolchain\n",
	}
	var total int64
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		total += int64(len(content))
	}
	require.NoError(t, os.Chmod(filepath.Join(root, "bin", "clang"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0700))

	if runtime.GOOS != "windows" {
		require.NoError(t, os.Symlink("clang", filepath.Join(root, "bin", "clang++")))
		require.NoError(t, os.Symlink("lib", filepath.Join(root, "lib64")))
	}
	return total
}

type treeEntry struct {
	mode    fs.FileMode
	content string
	link    string
}

func snapshot(t *testing.T, root string) map[string]treeEntry {
	t.Helper()
	out := map[string]treeEntry{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		info, err := d.Info()
		require.NoError(t, err)

		e := treeEntry{mode: info.Mode()}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			e.link, err = os.Readlink(path)
			require.NoError(t, err)
			e.mode = fs.ModeSymlink
		case info.Mode().IsRegular():
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			e.content = string(data)
		}
		if rel != "." {
			out[filepath.ToSlash(rel)] = e
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func simulateCrossDevice(t *testing.T) {
	t.Helper()
	oldRename, oldCheck := rename, isCrossDevice
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errSimulatedCrossDevice}
	}
	isCrossDevice = func(err error) bool { return errors.Is(err, errSimulatedCrossDevice) }
	t.Cleanup(func() { rename, isCrossDevice = oldRename, oldCheck })
}

func TestMoveSameDevice(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "staging", "ATfE-19.1.5")
	dst := filepath.Join(base, "19.1.5")
	buildTree(t, src)
	want := snapshot(t, src)

	require.NoError(t, Move(context.Background(), src, dst, nil))
	assert.Equal(t, want, snapshot(t, dst))
	assert.NoDirExists(t, src)
}

func TestMoveCrossDeviceFallsBackToCopy(t *testing.T) {
	simulateCrossDevice(t)

	base := t.TempDir()
	src := filepath.Join(base, "staging")
	dst := filepath.Join(base, "installed")
	total := buildTree(t, src)
	want := snapshot(t, src)

	var progress []core.CopyProgress
	err := Move(context.Background(), src, dst, func(p core.CopyProgress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, want, snapshot(t, dst))
	// Copy only: the staging tree is left for its owner.
	assert.DirExists(t, src)

	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, total, last.Total)
	assert.Equal(t, total, last.Copied)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i].Copied, progress[i-1].Copied)
	}
}

func TestMoveOtherErrorIsFatal(t *testing.T) {
	base := t.TempDir()
	err := Move(context.Background(), filepath.Join(base, "missing"), filepath.Join(base, "dst"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCopyDirCancelledMidCopy(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	for i := 0; i < 50; i++ {
		p := filepath.Join(src, "d", strings.Repeat("f", i%5+1)+string(rune('a'+i%26))+"_"+string(rune('a'+i/26)))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("data"), 0644))
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := CopyDir(ctx, src, filepath.Join(base, "dst"), func(core.CopyProgress) {
		calls++
		cancel()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCancelled)
	assert.Equal(t, 1, calls)
}

func TestRemoveDirAccounting(t *testing.T) {
	root := filepath.Join(t.TempDir(), "19.1.5")
	total := buildTree(t, root)

	// A link pointing outside the tree must not take its target along.
	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte(strings.Repeat("k", 999)), 0644))
	if runtime.GOOS != "windows" {
		require.NoError(t, os.Symlink(outside, filepath.Join(root, "external")))
	}

	var events []core.RemoveEvent
	removed, err := RemoveDir(context.Background(), root, func(e core.RemoveEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, total, removed)
	assert.NoDirExists(t, root)
	assert.FileExists(t, outside)

	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, core.RemoveStart{Total: total}, events[0])
	assert.Equal(t, core.RemoveEnd{}, events[len(events)-1])
	assert.Equal(t, core.RemoveProgress{Removed: total}, events[len(events)-2])
}

func TestRemoveDirPostOrder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	buildTree(t, root)

	entries, _, err := enumerate(context.Background(), root)
	require.NoError(t, err)

	seen := map[string]int{}
	for i, e := range entries {
		seen[e.path] = i
	}
	for _, e := range entries {
		if parent := filepath.Dir(e.path); e.path != root {
			assert.Less(t, seen[e.path], seen[parent], "%s before %s", e.path, parent)
		}
	}
	assert.Equal(t, root, entries[len(entries)-1].path)
}

func TestRemoveDirMissingAndCancelled(t *testing.T) {
	removed, err := RemoveDir(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)
	assert.Zero(t, removed)

	root := filepath.Join(t.TempDir(), "tree")
	buildTree(t, root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = RemoveDir(ctx, root, nil)
	assert.ErrorIs(t, err, core.ErrCancelled)
	assert.DirExists(t, root)
}

func TestRemoveDirReportsVanishedChild(t *testing.T) {
	root := filepath.Join(t.TempDir(), "tree")
	buildTree(t, root)
	gone := filepath.Join(root, "bin")

	orig := lstat
	lstat = func(name string) (os.FileInfo, error) {
		if name == gone {
			return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrNotExist}
		}
		return orig(name)
	}
	t.Cleanup(func() { lstat = orig })

	removed, err := RemoveDir(context.Background(), root, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Zero(t, removed)
	assert.DirExists(t, root)
}

func TestDirSize(t *testing.T) {
	root := t.TempDir()
	total := buildTree(t, root)

	size, err := DirSize(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, total, size)
}
