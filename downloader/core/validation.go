package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/vexide/arm-toolchain/logging"
)

// errSpaceUnknown is returned by freeSpace on platforms that cannot report it.
var errSpaceUnknown = errors.New("free space unknown")

// Validator handles system validations
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSpace checks available space
func (v *Validator) ValidateSpace(fileSize int64, directory string) error {
	return CheckDiskSpace(fileSize, directory)
}

// ValidateDirectories checks and creates necessary directories
func (v *Validator) ValidateDirectories(paths ...string) error {
	for _, p := range paths {
		if err := os.MkdirAll(p, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", p, err)
		}
	}
	return nil
}

// CheckDiskSpace fails with ErrInsufficientSpace when directory's volume has
// fewer than required free bytes. Platforms that cannot report free space
// always pass.
func CheckDiskSpace(required int64, directory string) error {
	if required <= 0 {
		return nil
	}
	free, err := freeSpace(directory)
	if errors.Is(err, errSpaceUnknown) {
		logging.LogDebug("⚠️ Cannot determine free space for %s, skipping check", directory)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check free space on %s: %w", directory, err)
	}
	logging.LogDebug("💾 %d bytes free on %s, %d required", free, directory, required)
	if free < uint64(required) {
		return fmt.Errorf("%w: %s has %d bytes free, %d required", ErrInsufficientSpace, directory, free, required)
	}
	return nil
}
