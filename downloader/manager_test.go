package downloader

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexide/arm-toolchain/downloader/cache"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/downloader/network"
)

const assetName = "ATfE-19.1.5-Windows-x86_64.zip"

func testZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"ATfE-19.1.5-Windows-x86_64/bin/clang.exe": "clang",
		"ATfE-19.1.5-Windows-x86_64/lib/libc.a":    "libc",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// releaseServer serves payload at /asset and digest at /asset.sha256.
func releaseServer(t *testing.T, payload []byte, digest string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/dl/"+assetName, func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, assetName, time.Time{}, bytes.NewReader(payload))
	})
	mux.HandleFunc("/dl/"+assetName+".sha256", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(digest + "  " + assetName + "\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestManager(t *testing.T) (*Manager, *cache.Manager, string) {
	t.Helper()
	base := t.TempDir()
	cacheManager := cache.NewManager(filepath.Join(base, "cache"), filepath.Join(base, "trash"))
	m := NewManager(network.NewClient("test", 5*time.Second), cacheManager)
	m.Extractor().StagingDir = base
	return m, cacheManager, base
}

func TestDownloadAndInstall(t *testing.T) {
	payload := testZip(t)
	sum := sha256.Sum256(payload)
	srv := releaseServer(t, payload, hex.EncodeToString(sum[:]))
	m, cacheManager, base := newTestManager(t)

	var events []core.InstallEvent
	dest := filepath.Join(base, "toolchains", "19.1.5")
	got, err := m.DownloadAndInstall(context.Background(), core.DownloadOptions{
		DownloadURL: srv.URL + "/dl/" + assetName,
		AssetName:   assetName,
		Size:        int64(len(payload)),
		InstallPath: dest,
		Version:     "19.1.5",
		Sink:        func(e core.InstallEvent) { events = append(events, e) },
	})
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(filepath.Join(dest, "bin", "clang.exe"))
	require.NoError(t, err)
	assert.Equal(t, "clang", string(data))
	assert.NoFileExists(t, cacheManager.ArchivePath(assetName))

	// Download, then verify, then extract.
	order := map[string]int{}
	for i, e := range events {
		switch e.(type) {
		case core.DownloadFinish:
			order["download"] = i
		case core.VerifyFinish:
			order["verify"] = i
		case core.ExtractDone:
			order["extract"] = i
		}
	}
	require.Len(t, order, 3)
	assert.Less(t, order["download"], order["verify"])
	assert.Less(t, order["verify"], order["extract"])
}

func TestDownloadAndInstallChecksumMismatch(t *testing.T) {
	payload := testZip(t)
	sum := sha256.Sum256(payload)
	srv := releaseServer(t, payload, hex.EncodeToString(sum[:]))
	m, cacheManager, base := newTestManager(t)

	// Corrupt one byte of an otherwise complete cached download.
	corrupt := append([]byte(nil), payload...)
	corrupt[len(corrupt)/2] ^= 0xFF
	_, err := cacheManager.PrepareCacheDirectory()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cacheManager.ArchivePath(assetName), corrupt, 0644))

	dest := filepath.Join(base, "toolchains", "19.1.5")
	_, err = m.DownloadAndInstall(context.Background(), core.DownloadOptions{
		DownloadURL: srv.URL + "/dl/" + assetName,
		AssetName:   assetName,
		Size:        int64(len(payload)),
		InstallPath: dest,
		Version:     "19.1.5",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrChecksumMismatch)
	assert.NoFileExists(t, cacheManager.ArchivePath(assetName))
	assert.NoDirExists(t, dest)
}

func TestDownloadAndInstallChecksumUnavailable(t *testing.T) {
	payload := testZip(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/dl/"+assetName, func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, assetName, time.Time{}, bytes.NewReader(payload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	m, _, base := newTestManager(t)

	_, err := m.DownloadAndInstall(context.Background(), core.DownloadOptions{
		DownloadURL: srv.URL + "/dl/" + assetName,
		AssetName:   assetName,
		Size:        int64(len(payload)),
		InstallPath: filepath.Join(base, "toolchains", "19.1.5"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUpstreamAPI)
}

func TestDownloadAndInstallCancelled(t *testing.T) {
	payload := testZip(t)
	sum := sha256.Sum256(payload)
	srv := releaseServer(t, payload, hex.EncodeToString(sum[:]))
	m, _, base := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(base, "toolchains", "19.1.5")
	_, err := m.DownloadAndInstall(ctx, core.DownloadOptions{
		DownloadURL: srv.URL + "/dl/" + assetName,
		AssetName:   assetName,
		Size:        int64(len(payload)),
		InstallPath: dest,
	})
	assert.ErrorIs(t, err, core.ErrCancelled)
	assert.NoDirExists(t, dest)
}

func TestRemaining(t *testing.T) {
	p := filepath.Join(t.TempDir(), "partial")
	assert.Equal(t, int64(100), remaining(p, 100))

	require.NoError(t, os.WriteFile(p, make([]byte, 40), 0644))
	assert.Equal(t, int64(60), remaining(p, 100))
	assert.Equal(t, int64(10), remaining(p, 10))
}
