package network

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/vexide/arm-toolchain/downloader/checksum"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
)

const (
	// ChecksumSuffix is appended to an asset URL to locate its digest.
	ChecksumSuffix = ".sha256"

	copyBufferSize  = 32 * 1024
	writeBufferSize = 256 * 1024
	maxSidecarSize  = 4 * 1024
)

// Client handles network operations
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a Client suited to large downloads: connection setup and
// response headers are bounded by timeout, the body is not.
func NewClient(userAgent string, timeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return NewClientWithHTTP(&http.Client{Transport: transport}, userAgent)
}

// NewClientWithHTTP wraps an existing http.Client.
func NewClientWithHTTP(httpClient *http.Client, userAgent string) *Client {
	return &Client{httpClient: httpClient, userAgent: userAgent}
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// DownloadResumable makes dest hold the first size bytes served at rawURL,
// reusing whatever prefix is already on disk. The returned file is open for
// reading and writing; the caller closes it.
func (c *Client) DownloadResumable(ctx context.Context, rawURL string, size int64, dest string, sink core.InstallSink) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	f, err := os.OpenFile(dest, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open download file: %w", err)
	}

	if err := c.download(ctx, f, rawURL, size, sink); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (c *Client) download(ctx context.Context, f *os.File, rawURL string, size int64, sink core.InstallSink) error {
	current, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to determine partial download size: %w", err)
	}

	if current > size {
		logging.LogWarn("⚠️ %s is larger than expected (%d > %d bytes), restarting download", f.Name(), current, size)
		if err := f.Truncate(0); err != nil {
			return fmt.Errorf("failed to truncate oversized download: %w", err)
		}
		current = 0
	}

	if current == size {
		logging.LogDebug("✅ %s already complete (%d bytes)", f.Name(), size)
		return nil
	}

	logging.LogDebug("📡 Requesting bytes %d-%d of %s", current, size-1, rawURL)

	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", current, size-1))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return core.Cancelled(ctx)
		}
		return fmt.Errorf("%w: %w", core.ErrDownload, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusOK:
		// Range ignored; the full body follows.
		if current > 0 {
			logging.LogDebug("⚠️ Server ignored range request, restarting from zero")
			if err := f.Truncate(0); err != nil {
				return fmt.Errorf("failed to truncate partial download: %w", err)
			}
			current = 0
		}
	default:
		return fmt.Errorf("%w: server returned %s for %s", core.ErrDownload, resp.Status, rawURL)
	}

	sink.Emit(core.DownloadBegin{Total: size, Current: current})

	w := bufio.NewWriterSize(f, writeBufferSize)
	buf := make([]byte, copyBufferSize)
	for {
		if err := core.CheckCancelled(ctx); err != nil {
			w.Flush()
			return err
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return fmt.Errorf("failed to write download: %w", err)
			}
			current += int64(n)
			sink.Emit(core.DownloadProgress{Current: current})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			w.Flush()
			if ctx.Err() != nil {
				return core.Cancelled(ctx)
			}
			return fmt.Errorf("%w: %w", core.ErrDownload, readErr)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write download: %w", err)
	}

	sink.Emit(core.DownloadFinish{})

	if current != size {
		return fmt.Errorf("%w: expected %d bytes, received %d", core.ErrDownload, size, current)
	}

	logging.LogDebug("✅ Download completed: %s (%d bytes)", f.Name(), current)
	return nil
}

// ChecksumURL returns the sidecar location for an asset URL.
func ChecksumURL(assetURL string) (string, error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return "", fmt.Errorf("invalid asset URL %q: %w", assetURL, err)
	}
	u.Path += ChecksumSuffix
	if u.RawPath != "" {
		u.RawPath += ChecksumSuffix
	}
	return u.String(), nil
}

// FetchChecksum downloads the sidecar digest published next to assetURL.
func (c *Client) FetchChecksum(ctx context.Context, assetURL string) (string, error) {
	sumURL, err := ChecksumURL(assetURL)
	if err != nil {
		return "", err
	}

	logging.LogDebug("🔐 Fetching checksum from %s", sumURL)

	req, err := c.newRequest(ctx, sumURL)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", core.Cancelled(ctx)
		}
		return "", fmt.Errorf("%w: %w", core.ErrUpstreamAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: checksum request returned %s", core.ErrUpstreamAPI, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSidecarSize))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read checksum: %w", core.ErrUpstreamAPI, err)
	}

	sum := checksum.ParseSidecar(string(body))
	if sum == "" {
		return "", fmt.Errorf("%w: empty checksum file at %s", core.ErrUpstreamAPI, sumURL)
	}
	return sum, nil
}
