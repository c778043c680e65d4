package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vexide/arm-toolchain/downloader/fsutil"
	"github.com/vexide/arm-toolchain/logging"
)

// Manager owns the download cache and the trash directory that receives
// displaced installs.
type Manager struct {
	cacheDir string
	trashDir string
}

// NewManager creates a new Manager instance
func NewManager(cacheDir, trashDir string) *Manager {
	return &Manager{cacheDir: cacheDir, trashDir: trashDir}
}

// Dir returns the cache root.
func (m *Manager) Dir() string { return m.cacheDir }

// PrepareCacheDirectory prepares the cache directory
func (m *Manager) PrepareCacheDirectory() (string, error) {
	if err := os.MkdirAll(m.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return m.cacheDir, nil
}

// ArchivePath is where an asset is downloaded to and resumed from.
func (m *Manager) ArchivePath(assetName string) string {
	return filepath.Join(m.cacheDir, filepath.Base(assetName))
}

// CleanupArchive removes a downloaded archive and any directories it leaves
// empty inside the cache.
func (m *Manager) CleanupArchive(archivePath string) error {
	logging.LogDebug("🧹 Removing cached archive: %s", archivePath)
	if err := os.Remove(archivePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cached archive: %w", err)
	}

	root := filepath.Clean(m.cacheDir)
	parent := filepath.Dir(archivePath)
	for parent != root && len(parent) > len(root) {
		if empty, err := m.isDirEmpty(parent); err != nil || !empty {
			break
		}
		if err := os.Remove(parent); err != nil {
			break
		}
		parent = filepath.Dir(parent)
	}
	return nil
}

// Trash moves path into the trash directory under a unique name.
func (m *Manager) Trash(path string) error {
	if err := os.MkdirAll(m.trashDir, 0755); err != nil {
		return fmt.Errorf("failed to create trash directory: %w", err)
	}

	target := filepath.Join(m.trashDir, filepath.Base(path)+"-"+strconv.FormatInt(time.Now().UnixNano(), 10))
	logging.LogDebug("🗑️ Trashing %s to %s", path, target)

	if err := fsutil.Move(context.Background(), path, target, nil); err != nil {
		return err
	}
	// A cross-device move copies; drop the original afterwards.
	if _, err := os.Lstat(path); err == nil {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s after copying to trash: %w", path, err)
		}
	}
	return nil
}

// Purge deletes the whole cache directory and returns the bytes it held.
// Sizing is best-effort: a failed scan reports zero.
func (m *Manager) Purge() (int64, error) {
	return purgeDir(m.cacheDir)
}

// EmptyTrash deletes everything previously moved to the trash.
func (m *Manager) EmptyTrash() (int64, error) {
	return purgeDir(m.trashDir)
}

func purgeDir(dir string) (int64, error) {
	size, err := fsutil.DirSize(context.Background(), dir)
	if err != nil {
		logging.LogDebug("⚠️ Could not size %s: %v", dir, err)
		size = 0
	}

	logging.LogDebug("🧹 Removing %s (%d bytes)", dir, size)
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return size, nil
}

func (m *Manager) isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, fmt.Errorf("failed to check if directory is empty: %w", err)
}
