package toolchain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vexide/arm-toolchain/downloader/core"
)

// MultilibDirName is the multilib root below lib/.
const MultilibDirName = "clang-runtimes"

// InstalledToolchain is a toolchain directory known to exist. Path helpers
// only join paths and perform no I/O.
type InstalledToolchain struct {
	Path string
}

// NewInstalledToolchain checks that path is a directory.
func NewInstalledToolchain(path string) (*InstalledToolchain, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotInstalled, path)
		}
		return nil, fmt.Errorf("failed to stat toolchain %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", core.ErrNotInstalled, path)
	}
	return &InstalledToolchain{Path: path}, nil
}

func (t *InstalledToolchain) HostBinDir() string { return filepath.Join(t.Path, "bin") }

func (t *InstalledToolchain) LibDir() string { return filepath.Join(t.Path, "lib") }

func (t *InstalledToolchain) MultilibDir() string {
	return filepath.Join(t.LibDir(), MultilibDirName)
}

// TargetLibDir is lib/clang-runtimes/<triple>/<variant>/lib.
func (t *InstalledToolchain) TargetLibDir(triple, variant string) string {
	return filepath.Join(t.MultilibDir(), triple, variant, "lib")
}

// TargetIncludeDirs returns the variant include directory followed by the
// triple-wide one.
func (t *InstalledToolchain) TargetIncludeDirs(triple, variant string) []string {
	return []string{
		filepath.Join(t.MultilibDir(), triple, variant, "include"),
		filepath.Join(t.MultilibDir(), triple, "include"),
	}
}
