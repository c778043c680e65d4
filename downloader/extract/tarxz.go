package extract

import (
	"archive/tar"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/downloader/fsutil"
	"github.com/vexide/arm-toolchain/logging"
)

// extractTarXz unpacks into a staging directory, then moves the archive's
// single top-level directory to dest. The name of that directory differs
// between releases so it is discovered rather than assumed.
func (e *Extractor) extractTarXz(ctx context.Context, f *os.File, dest string, sink core.InstallSink) error {
	staging, err := os.MkdirTemp(e.StagingDir, "arm-toolchain-extract-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logging.LogWarn("⚠️ Failed to remove staging directory %s: %v", staging, err)
		}
	}()

	if err := untarXz(ctx, f, staging); err != nil {
		return err
	}

	root, err := FindRootDir(staging)
	if err != nil {
		return err
	}

	logging.LogDebug("📂 Moving %s to %s", root, dest)
	err = fsutil.Move(ctx, root, dest, func(p core.CopyProgress) {
		sink.Emit(core.ExtractCopy{CopyProgress: p})
	})
	if err != nil {
		return err
	}

	sink.Emit(core.ExtractCleanUp{})
	return nil
}

func untarXz(ctx context.Context, r io.Reader, dest string) error {
	xr, err := xz.NewReader(bufio.NewReader(r))
	if err != nil {
		return fmt.Errorf("failed to open xz stream: %w", err)
	}
	tr := tar.NewReader(xr)

	for {
		if err := core.CheckCancelled(ctx); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()|0700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink:
			if err := writeSymlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", hdr.Name, err)
			}
		case tar.TypeLink:
			src, err := safeJoin(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Link(src, target); err != nil {
				return fmt.Errorf("failed to create hard link %s: %w", hdr.Name, err)
			}
		default:
			logging.LogDebug("⏭️ Skipping tar entry %s (type %c)", hdr.Name, hdr.Typeflag)
		}
	}
}
