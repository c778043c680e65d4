package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vexide/arm-toolchain/downloader/cache"
	"github.com/vexide/arm-toolchain/downloader/checksum"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/downloader/extract"
	"github.com/vexide/arm-toolchain/downloader/network"
	"github.com/vexide/arm-toolchain/logging"
	"golang.org/x/sync/errgroup"
)

// Manager orchestrates the download and installation process
type Manager struct {
	network   *network.Client
	extractor *extract.Extractor
	cache     *cache.Manager
	validator *core.Validator
}

// NewManager creates a new Manager instance
func NewManager(client *network.Client, cacheManager *cache.Manager) *Manager {
	return &Manager{
		network:   client,
		extractor: extract.NewExtractor(cacheManager),
		cache:     cacheManager,
		validator: core.NewValidator(),
	}
}

// Extractor exposes the archive extractor for configuration.
func (m *Manager) Extractor() *extract.Extractor { return m.extractor }

// DownloadAndInstall fetches the archive and its published checksum
// concurrently, verifies the archive, and extracts it to opts.InstallPath.
// An archive that fails verification is deleted so the next attempt starts
// from scratch; any other failure leaves it cached for resumption.
func (m *Manager) DownloadAndInstall(ctx context.Context, opts core.DownloadOptions) (string, error) {
	logging.LogDebug("🔍 Starting installation of %s from %s", opts.Version, opts.DownloadURL)

	cacheDir, err := m.cache.PrepareCacheDirectory()
	if err != nil {
		return "", fmt.Errorf("failed to prepare cache: %w", err)
	}
	if err := m.validator.ValidateDirectories(filepath.Dir(opts.InstallPath)); err != nil {
		return "", fmt.Errorf("failed to prepare installation directory: %w", err)
	}

	archivePath := m.cache.ArchivePath(opts.AssetName)
	if err := m.validator.ValidateSpace(remaining(archivePath, opts.Size), cacheDir); err != nil {
		return "", fmt.Errorf("cache directory space check failed: %w", err)
	}
	if err := m.validator.ValidateSpace(opts.Size, filepath.Dir(opts.InstallPath)); err != nil {
		return "", fmt.Errorf("install directory space check failed: %w", err)
	}

	var (
		expected string
		actual   []byte
		archive  *os.File
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := m.network.FetchChecksum(gctx, opts.DownloadURL)
		if err != nil {
			return fmt.Errorf("failed to fetch checksum: %w", err)
		}
		expected = sum
		return nil
	})
	g.Go(func() error {
		f, err := m.network.DownloadResumable(gctx, opts.DownloadURL, opts.Size, archivePath, opts.Sink)
		if err != nil {
			return err
		}
		archive = f
		actual, err = checksum.Calculate(gctx, f, opts.Size, opts.Sink)
		return err
	})
	err = g.Wait()

	closeArchive := func() {
		if archive != nil {
			archive.Close()
			archive = nil
		}
	}
	defer closeArchive()

	if ctx.Err() != nil {
		return "", core.Cancelled(ctx)
	}
	if err != nil {
		return "", err
	}

	if err := checksum.Compare(expected, actual); err != nil {
		logging.LogError("❌ Checksum mismatch for %s, removing cached archive", opts.AssetName)
		closeArchive()
		if rmErr := m.cache.CleanupArchive(archivePath); rmErr != nil {
			logging.LogWarn("⚠️ Failed to remove corrupt archive: %v", rmErr)
		}
		return "", err
	}
	logging.LogDebug("✅ Checksum verified: %s", checksum.HexDigest(actual))

	if err := m.extractor.Extract(ctx, archive, opts.AssetName, opts.InstallPath, opts.Sink); err != nil {
		return "", err
	}
	closeArchive()

	if err := m.cache.CleanupArchive(archivePath); err != nil {
		logging.LogDebug("⚠️ Cache cleanup failed: %v", err)
	}

	logging.LogInfo("✅ Successfully installed %s to %s", opts.Version, opts.InstallPath)
	return opts.InstallPath, nil
}

// remaining is how many bytes still need to be downloaded into path.
func remaining(path string, size int64) int64 {
	info, err := os.Stat(path)
	if err != nil || info.Size() > size {
		return size
	}
	return size - info.Size()
}
