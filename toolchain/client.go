package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vexide/arm-toolchain/downloader"
	"github.com/vexide/arm-toolchain/downloader/cache"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/downloader/fsutil"
	"github.com/vexide/arm-toolchain/downloader/network"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/repository"
	"github.com/vexide/arm-toolchain/repository/version"
	"golang.org/x/sync/errgroup"
)

const (
	// CurrentFileName holds the active version inside the toolchains root.
	CurrentFileName = "current.txt"

	recentReleases = 10
)

// ClientOptions configures a Client.
type ClientOptions struct {
	ToolchainsDir string
	CacheDir      string
	TrashDir      string
	Source        repository.ReleaseSource
	Network       *network.Client
	// StagingDir overrides where archives are unpacked before being moved
	// into place. Empty means the system temporary directory.
	StagingDir string
}

// Client installs, removes and activates toolchains under one toolchains
// root. The active version is read from disk once and then kept in memory;
// writes go to both. Separate processes sharing a root are not coordinated.
type Client struct {
	source     repository.ReleaseSource
	downloader *downloader.Manager
	cache      *cache.Manager

	toolchainsPath string

	mu     sync.RWMutex
	active *version.ToolchainVersion
}

// NewClient creates both directory roots and loads the active version.
func NewClient(opts ClientOptions) (*Client, error) {
	for _, dir := range []string{opts.ToolchainsDir, opts.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	cacheManager := cache.NewManager(opts.CacheDir, opts.TrashDir)
	dl := downloader.NewManager(opts.Network, cacheManager)
	dl.Extractor().StagingDir = opts.StagingDir

	c := &Client{
		source:         opts.Source,
		downloader:     dl,
		cache:          cacheManager,
		toolchainsPath: opts.ToolchainsDir,
	}

	active, err := c.readActive()
	if err != nil {
		return nil, err
	}
	c.active = active
	return c, nil
}

func (c *Client) currentFile() string {
	return filepath.Join(c.toolchainsPath, CurrentFileName)
}

func (c *Client) readActive() (*version.ToolchainVersion, error) {
	data, err := os.ReadFile(c.currentFile())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read active toolchain: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return nil, nil
	}
	v := version.ToolchainVersion{Name: name}
	logging.LogDebug("📌 Active toolchain: %s", v)
	return &v, nil
}

// LatestRelease returns the newest recent release tagged for this product.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	logging.LogDebug("🔍 Fetching %d most recent releases", recentReleases)
	releases, err := c.source.ListReleases(ctx, recentReleases)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(releases))
	for _, r := range releases {
		if strings.HasSuffix(r.TagName, version.ReleaseSuffix) {
			return NewRelease(r), nil
		}
		candidates = append(candidates, r.TagName)
	}
	return nil, &core.LatestReleaseMissingError{Suffix: version.ReleaseSuffix, Candidates: candidates}
}

// GetRelease fetches the release for a concrete version.
func (c *Client) GetRelease(ctx context.Context, v version.ToolchainVersion) (*Release, error) {
	logging.LogDebug("🔍 Fetching release %s", v.TagName())
	r, err := c.source.GetReleaseByTag(ctx, v.TagName())
	if err != nil {
		return nil, err
	}
	return NewRelease(*r), nil
}

// ResolveRelease handles the "latest" selector, then fetches the release.
func (c *Client) ResolveRelease(ctx context.Context, v version.ToolchainVersion) (*Release, error) {
	if v.IsLatest() {
		return c.LatestRelease(ctx)
	}
	if v.IsAll() {
		return nil, fmt.Errorf("%q does not name a single release", version.All)
	}
	return c.GetRelease(ctx, v)
}

// RecentReleases lists recent product releases, newest first.
func (c *Client) RecentReleases(ctx context.Context) ([]*Release, error) {
	releases, err := c.source.ListReleases(ctx, recentReleases)
	if err != nil {
		return nil, err
	}
	var out []*Release
	for _, r := range releases {
		if strings.HasSuffix(r.TagName, version.ReleaseSuffix) && !r.Draft {
			out = append(out, NewRelease(r))
		}
	}
	return out, nil
}

func checkName(v version.ToolchainVersion) error {
	if v.Name == "" || v.IsMeta() || v.Name == "." || v.Name == ".." || strings.ContainsAny(v.Name, `/\`) {
		return fmt.Errorf("invalid toolchain version %q", v.Name)
	}
	return nil
}

// InstallPathFor is where v is, or would be, installed.
func (c *Client) InstallPathFor(v version.ToolchainVersion) string {
	return filepath.Join(c.toolchainsPath, v.Name)
}

// IsInstalled reports whether v's directory exists.
func (c *Client) IsInstalled(v version.ToolchainVersion) bool {
	if checkName(v) != nil {
		return false
	}
	info, err := os.Stat(c.InstallPathFor(v))
	return err == nil && info.IsDir()
}

// Install downloads, verifies and extracts asset from release. The version
// becomes active only when no other version is.
func (c *Client) Install(ctx context.Context, release *Release, asset repository.Asset, sink core.InstallSink) (*InstalledToolchain, error) {
	v := release.Version()
	if err := checkName(v); err != nil {
		return nil, err
	}

	dest, err := c.downloader.DownloadAndInstall(ctx, core.DownloadOptions{
		DownloadURL: asset.DownloadURL,
		AssetName:   asset.Name,
		Size:        asset.Size,
		InstallPath: c.InstallPathFor(v),
		Version:     v.String(),
		Sink:        sink,
	})
	if err != nil {
		return nil, err
	}

	tc, err := NewInstalledToolchain(dest)
	if err != nil {
		return nil, err
	}

	activated, err := c.activateIfNone(v)
	if err != nil {
		return nil, err
	}
	if activated {
		logging.LogInfo("📌 %s is now the active toolchain", v)
	}
	return tc, nil
}

// Remove deletes v's directory and clears the active pointer if it named v.
// A missing directory is not an error.
func (c *Client) Remove(ctx context.Context, v version.ToolchainVersion, sink core.RemoveSink) (int64, error) {
	if err := checkName(v); err != nil {
		return 0, err
	}

	path := c.InstallPathFor(v)
	logging.LogDebug("🗑️ Removing %s at %s", v, path)

	removed, err := fsutil.RemoveDir(ctx, path, sink)
	if err != nil {
		return removed, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && *c.active == v {
		if err := c.writeActiveLocked(nil); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// RemoveAll clears the active pointer and removes every installed version
// concurrently. sinkFor may return nil for a version.
func (c *Client) RemoveAll(ctx context.Context, sinkFor func(version.ToolchainVersion) core.RemoveSink) ([]version.ToolchainVersion, int64, error) {
	if err := c.SetActive(nil); err != nil {
		return nil, 0, err
	}

	versions, err := c.InstalledVersions()
	if err != nil {
		return nil, 0, err
	}

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range versions {
		v := v
		var sink core.RemoveSink
		if sinkFor != nil {
			sink = sinkFor(v)
		}
		g.Go(func() error {
			n, err := c.Remove(gctx, v, sink)
			total.Add(n)
			if err != nil {
				return fmt.Errorf("failed to remove %s: %w", v, err)
			}
			return nil
		})
	}
	err = g.Wait()
	if ctx.Err() != nil {
		return versions, total.Load(), core.Cancelled(ctx)
	}
	return versions, total.Load(), err
}

// InstalledVersions lists the directories in the toolchains root, oldest
// version first. Their contents are not inspected.
func (c *Client) InstalledVersions() ([]version.ToolchainVersion, error) {
	entries, err := os.ReadDir(c.toolchainsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list toolchains: %w", err)
	}

	var versions []version.ToolchainVersion
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, version.ToolchainVersion{Name: e.Name()})
		}
	}
	version.Sort(versions)
	return versions, nil
}

// PurgeCache deletes all cached downloads and returns the bytes freed.
func (c *Client) PurgeCache() (int64, error) {
	return c.cache.Purge()
}

// EmptyTrash deletes installs displaced by reinstalls.
func (c *Client) EmptyTrash() (int64, error) {
	return c.cache.EmptyTrash()
}

// Active returns the active version, or nil.
func (c *Client) Active() *version.ToolchainVersion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return nil
	}
	v := *c.active
	return &v
}

// SetActive records v as the active version. nil clears it.
func (c *Client) SetActive(v *version.ToolchainVersion) error {
	if v != nil {
		if err := checkName(*v); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeActiveLocked(v)
}

func (c *Client) activateIfNone(v version.ToolchainVersion) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return false, nil
	}
	return true, c.writeActiveLocked(&v)
}

func (c *Client) writeActiveLocked(v *version.ToolchainVersion) error {
	path := c.currentFile()
	if v == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear active toolchain: %w", err)
		}
		c.active = nil
		return nil
	}

	tmp, err := os.CreateTemp(c.toolchainsPath, ".current-*")
	if err != nil {
		return fmt.Errorf("failed to write active toolchain: %w", err)
	}
	if _, err := tmp.WriteString(v.Name); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write active toolchain: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write active toolchain: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write active toolchain: %w", err)
	}

	nv := *v
	c.active = &nv
	return nil
}

// Toolchain returns the installed toolchain for v.
func (c *Client) Toolchain(v version.ToolchainVersion) (*InstalledToolchain, error) {
	if err := checkName(v); err != nil {
		return nil, err
	}
	return NewInstalledToolchain(c.InstallPathFor(v))
}
