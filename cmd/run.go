package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/toolchain"
)

var (
	runVersion string
	noCrossEnv bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <command> [args...]",
	Short: "Run a command with a toolchain on PATH",
	Long: `Run a command with the toolchain's bin directory first on PATH.
Unless --no-cross-env is given, TARGET_CC and TARGET_AR point build scripts at clang and llvm-ar.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		tc, err := resolveInstalled(client, runVersion)
		if err != nil {
			return err
		}

		child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
		child.Env = toolchain.RunEnv(tc, os.Environ(), !noCrossEnv)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr

		logging.LogDebug("▶️ Running %v with %s", args, tc.Path)
		if err := child.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				logging.Close()
				os.Exit(exitErr.ExitCode())
			}
			return fmt.Errorf("failed to run %s: %w", args[0], err)
		}
		return nil
	},
	Example: `  # Build with the active toolchain
  arm-toolchain run cargo build --release

  # Use a specific version
  arm-toolchain run -T 19.1.5 clang --version`,
}

func init() {
	runCmd.Flags().StringVarP(&runVersion, "toolchain", "T", "", "Version to run with (default: the active version)")
	runCmd.Flags().BoolVar(&noCrossEnv, "no-cross-env", false, "Do not set TARGET_CC and TARGET_AR")
	// Everything after the command belongs to it.
	runCmd.Flags().SetInterspersed(false)
}
