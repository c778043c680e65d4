// Package extract unpacks downloaded toolchain archives into their install
// directory.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
)

// Format is an archive layout the extractor understands.
type Format int

const (
	FormatZip Format = iota + 1
	FormatTarXz
	FormatDmg
)

var formatSuffixes = []struct {
	suffix string
	format Format
}{
	{".tar.xz", FormatTarXz},
	{".zip", FormatZip},
	{".dmg", FormatDmg},
}

// Extensions lists the archive extensions accepted for asset selection,
// without the leading dot.
func Extensions() []string {
	return []string{"dmg", "tar.xz", "zip"}
}

// FormatFor picks the format from a file name's suffix.
func FormatFor(name string) (Format, error) {
	lower := strings.ToLower(name)
	for _, s := range formatSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, name)
}

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarXz:
		return "tar.xz"
	case FormatDmg:
		return "dmg"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Trasher moves a path somewhere recoverable instead of deleting it.
type Trasher interface {
	Trash(path string) error
}

// Extractor unpacks archives. An existing destination is handed to the
// Trasher before anything is written.
type Extractor struct {
	trash Trasher
	// StagingDir holds temporary extraction trees. Empty means the system
	// temporary directory.
	StagingDir string
}

// NewExtractor creates a new Extractor instance
func NewExtractor(trash Trasher) *Extractor {
	return &Extractor{trash: trash}
}

// Extract unpacks archive, whose file name is name, into dest.
func (e *Extractor) Extract(ctx context.Context, archive *os.File, name, dest string, sink core.InstallSink) error {
	format, err := FormatFor(name)
	if err != nil {
		return err
	}

	if _, err := os.Lstat(dest); err == nil {
		logging.LogInfo("🗑️ Moving existing %s to trash", dest)
		if err := e.trash.Trash(dest); err != nil {
			return fmt.Errorf("failed to trash existing install %s: %w", dest, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind archive: %w", err)
	}

	logging.LogDebug("📦 Extracting %s (%s) to %s", name, format, dest)
	sink.Emit(core.ExtractBegin{})

	switch format {
	case FormatZip:
		err = extractZip(ctx, archive, dest)
	case FormatTarXz:
		err = e.extractTarXz(ctx, archive, dest, sink)
	case FormatDmg:
		err = extractDmg(ctx, archive.Name(), dest, sink)
	}
	if err != nil {
		if core.IsCancelled(err) {
			return err
		}
		return fmt.Errorf("%w: %w", core.ErrExtract, err)
	}

	sink.Emit(core.ExtractDone{})
	return nil
}

// FindRootDir returns the first directory directly inside dir, in name
// order. Symlinks are skipped.
func FindRootDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", core.ErrContentsNotFound
}

// safeJoin joins an archive entry name onto dest, refusing names that would
// land outside it.
func safeJoin(dest, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", fmt.Errorf("illegal absolute path in archive: %s", name)
	}
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}

	// A link written by an earlier entry must not redirect later ones.
	parent := dest
	dirs := strings.Split(filepath.Dir(rel), string(os.PathSeparator))
	for _, dir := range dirs {
		if dir == "." || dir == "" {
			continue
		}
		parent = filepath.Join(parent, dir)
		info, err := os.Lstat(parent)
		if err != nil {
			break
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("illegal path through symlink in archive: %s", name)
		}
	}
	return target, nil
}

// clearLink removes target if it is a symlink so that writing to it cannot
// follow the link.
func clearLink(target string) error {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(target)
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if err := clearLink(target); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(target, perm)
}

func writeSymlink(target, linkName string) error {
	if err := os.MkdirAll(filepath.Dir(linkName), 0755); err != nil {
		return err
	}
	os.Remove(linkName)
	return os.Symlink(target, linkName)
}
