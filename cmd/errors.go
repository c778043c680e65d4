package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
)

// Exit codes
const (
	exitFailure   = 1
	exitCancelled = 130
)

// errDeclined is returned when the user answers no to a prompt.
var errDeclined = errors.New("declined by user")

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if core.IsCancelled(err) {
		return exitCancelled
	}
	return exitFailure
}

// hint returns a follow-up suggestion for well-known failures.
func hint(err error) string {
	var missing *core.AssetMissingError
	switch {
	case errors.As(err, &missing):
		return "This release has no build for your platform. Try another version with 'arm-toolchain available'."
	case errors.Is(err, core.ErrChecksumMismatch):
		return "The corrupt download was removed. Run the command again to retry."
	case errors.Is(err, core.ErrNotInstalled):
		return "Use 'arm-toolchain list' to see installed versions."
	case errors.Is(err, core.ErrDmgNotSupported):
		return "Disk image releases can only be installed on macOS."
	}
	return ""
}

// ExitWithError reports err and terminates the process.
func ExitWithError(err error) {
	code := exitCode(err)

	if jsonOutput {
		OutputJSON(CommandOutput{Error: err.Error()})
	} else if code == exitCancelled || errors.Is(err, errDeclined) {
		fmt.Fprintln(os.Stderr, "Cancelled.")
	} else {
		logging.LogError("❌ %v", err)
		if h := hint(err); h != "" {
			logging.LogInfo("💡 %s", h)
		}
	}

	logging.Close()
	os.Exit(code)
}
