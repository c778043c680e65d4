package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUpstreamAPI       = errors.New("upstream API request failed")
	ErrDownload          = errors.New("download failed")
	ErrResolution        = errors.New("no matching release or asset")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrExtract           = errors.New("extraction failed")
	ErrContentsNotFound  = errors.New("could not find the toolchain directory inside the archive")
	ErrDmgNotSupported   = errors.New("disk images can only be extracted on macOS")
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrInsufficientSpace = errors.New("insufficient disk space")
	ErrCancelled         = errors.New("operation cancelled")
	ErrNotInstalled      = errors.New("toolchain is not installed")
)

// ChecksumMismatchError reports a digest that differs from the published one.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error { return ErrChecksumMismatch }

// LatestReleaseMissingError is returned when no recent release carries the
// expected tag suffix.
type LatestReleaseMissingError struct {
	Suffix     string
	Candidates []string
}

func (e *LatestReleaseMissingError) Error() string {
	return fmt.Sprintf("no release tagged with suffix %q among: %s", e.Suffix, strings.Join(e.Candidates, ", "))
}

func (e *LatestReleaseMissingError) Unwrap() error { return ErrResolution }

// AssetMissingError is returned when a release has no asset for the host.
type AssetMissingError struct {
	OS         string
	Arches     []string
	Candidates []string
}

func (e *AssetMissingError) Error() string {
	return fmt.Sprintf("no asset for %s (%s) among: %s",
		e.OS, strings.Join(e.Arches, "/"), strings.Join(e.Candidates, ", "))
}

func (e *AssetMissingError) Unwrap() error { return ErrResolution }

// Cancelled builds the error returned once ctx is done.
func Cancelled(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
	return ErrCancelled
}

// CheckCancelled returns a cancellation error if ctx is done.
func CheckCancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return Cancelled(ctx)
	}
	return nil
}

// IsCancelled reports whether err stems from cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
