package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/vexide/arm-toolchain/downloader/core"
)

// extractZip unpacks a zip into dest. When every entry lives under one
// top-level directory that directory is stripped.
func extractZip(ctx context.Context, f *os.File, dest string) error {
	info, err := f.Stat()
	if err != nil {
		return err
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}

	prefix := commonRoot(zr.File)

	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	for _, zf := range zr.File {
		if err := core.CheckCancelled(ctx); err != nil {
			return err
		}

		name := strings.TrimPrefix(entryName(zf.Name), prefix)
		if name == "" || name == "/" {
			continue
		}

		target, err := safeJoin(dest, name)
		if err != nil {
			return err
		}

		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			link, err := readZipEntry(zf)
			if err != nil {
				return err
			}
			if err := writeSymlink(link, target); err != nil {
				return fmt.Errorf("failed to create symlink %s: %w", target, err)
			}
		default:
			rc, err := zf.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s in zip: %w", zf.Name, err)
			}
			perm := mode.Perm()
			if perm == 0 {
				perm = 0644
			}
			err = writeFile(target, rc, perm)
			rc.Close()
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", zf.Name, err)
			}
		}
	}
	return nil
}

func readZipEntry(zf *zip.File) (string, error) {
	rc, err := zf.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// entryName normalises a zip entry name to forward slashes without any
// leading "./".
func entryName(raw string) string {
	name := strings.ReplaceAll(raw, `\`, "/")
	for strings.HasPrefix(name, "./") {
		name = name[2:]
	}
	return name
}

// commonRoot returns "<dir>/" when all entries share a single top-level
// directory, or "" otherwise.
func commonRoot(files []*zip.File) string {
	root := ""
	nested := false
	for _, zf := range files {
		name := entryName(zf.Name)
		first, rest, hasSlash := strings.Cut(name, "/")
		if first == "" || first == "." || first == ".." {
			return ""
		}
		// A file at the top level means there is no wrapper.
		if !hasSlash && !zf.Mode().IsDir() {
			return ""
		}
		if root == "" {
			root = first
		} else if root != first {
			return ""
		}
		if rest != "" {
			nested = true
		}
	}
	if root == "" || !nested {
		return ""
	}
	return path.Clean(root) + "/"
}
