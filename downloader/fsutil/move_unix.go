//go:build unix

package fsutil

import (
	"errors"

	"golang.org/x/sys/unix"
)

func crossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
