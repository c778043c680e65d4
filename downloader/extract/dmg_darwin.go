//go:build darwin

package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/downloader/fsutil"
	"github.com/vexide/arm-toolchain/logging"
)

var (
	detachAttempts = 10
	detachBackoff  = 500 * time.Millisecond
)

// extractDmg mounts image, copies its first directory's contents into dest
// and unmounts it. The image is force-detached on every exit path unless a
// clean detach already succeeded.
func extractDmg(ctx context.Context, image, dest string, sink core.InstallSink) error {
	mountPoint, err := os.MkdirTemp("", "arm-toolchain-dmg-*")
	if err != nil {
		return fmt.Errorf("failed to create mount point: %w", err)
	}
	defer os.Remove(mountPoint)

	logging.LogDebug("💿 Attaching %s at %s", image, mountPoint)
	out, err := exec.CommandContext(ctx, "hdiutil", "attach", "-nobrowse", "-readonly", "-noautoopen",
		"-mountpoint", mountPoint, image).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return core.Cancelled(ctx)
		}
		return fmt.Errorf("hdiutil attach failed: %w: %s", err, out)
	}

	detached := false
	defer func() {
		if detached {
			return
		}
		logging.LogDebug("💿 Force detaching %s", mountPoint)
		if out, err := exec.Command("hdiutil", "detach", "-force", mountPoint).CombinedOutput(); err != nil {
			logging.LogWarn("⚠️ Force detach of %s failed: %v: %s", mountPoint, err, out)
		}
	}()

	root, err := FindRootDir(mountPoint)
	if err != nil {
		return err
	}

	err = fsutil.CopyDir(ctx, root, dest, func(p core.CopyProgress) {
		sink.Emit(core.ExtractCopy{CopyProgress: p})
	})
	if err != nil {
		return err
	}

	detached = detachWithRetry(mountPoint)
	if !detached {
		msg := fmt.Sprintf("could not unmount %s after %d attempts, forcing", mountPoint, detachAttempts)
		logging.LogWarn("⚠️ %s", msg)
		sink.Emit(core.ExtractWarning{Message: msg})
	}
	sink.Emit(core.ExtractCleanUp{})
	return nil
}

func detachWithRetry(mountPoint string) bool {
	for i := 0; i < detachAttempts; i++ {
		out, err := exec.Command("hdiutil", "detach", mountPoint).CombinedOutput()
		if err == nil {
			return true
		}
		logging.LogDebug("💿 Detach attempt %d failed: %v: %s", i+1, err, out)
		time.Sleep(detachBackoff)
	}
	return false
}
