// Package checksum computes and compares SHA-256 digests of downloaded archives.
package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vexide/arm-toolchain/downloader/core"
)

// ChunkSize is the read size used while hashing.
const ChunkSize = 64 * 1024

// Calculate rewinds f and streams it through SHA-256, emitting verify events
// to sink. size is only used for the begin event.
func Calculate(ctx context.Context, f io.ReadSeeker, size int64, sink core.InstallSink) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file for hashing: %w", err)
	}

	sink.Emit(core.VerifyBegin{Total: size})

	h := sha256.New()
	buf := make([]byte, ChunkSize)
	var read int64
	for {
		if err := core.CheckCancelled(ctx); err != nil {
			return nil, err
		}

		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			read += int64(n)
			sink.Emit(core.VerifyProgress{Current: read})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read file for hashing: %w", err)
		}
	}

	sink.Emit(core.VerifyFinish{})
	return h.Sum(nil), nil
}

// HexDigest renders a digest as lowercase hex.
func HexDigest(sum []byte) string {
	return hex.EncodeToString(sum)
}

// ParseSidecar extracts the digest from a "<hex> <filename>" body.
func ParseSidecar(body string) string {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Compare checks a computed digest against the expected hex string,
// ignoring case.
func Compare(expected string, actual []byte) error {
	got := HexDigest(actual)
	if expected == "" || !strings.EqualFold(strings.TrimSpace(expected), got) {
		return &core.ChecksumMismatchError{Expected: expected, Actual: got}
	}
	return nil
}
