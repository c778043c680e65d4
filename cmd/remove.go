package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/repository/version"
)

var removeCmd = &cobra.Command{
	Use:     "remove <version|all>",
	Aliases: []string{"uninstall", "rm"},
	Short:   "Remove an installed toolchain version",
	Long: `Remove an installed toolchain version, or every installed version with "all".
Removing the active version leaves no version active.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requested := version.Parse(args[0])

		client, err := newClient()
		if err != nil {
			return err
		}

		if requested.IsAll() {
			removed, freed, err := client.RemoveAll(cmd.Context(), func(v version.ToolchainVersion) core.RemoveSink {
				logging.LogDebug("🗑️ Removing %s", v)
				return nil
			})
			if err != nil {
				return err
			}
			for _, v := range removed {
				logging.LogInfo("🗑️ Removed %s", v)
			}
			logging.LogInfo("✅ Removed %d toolchain(s), freed %s", len(removed), formatBytes(freed))
			return outputRemoved(freed)
		}

		if requested.IsLatest() {
			return fmt.Errorf("specify the version to remove, not %q", version.Latest)
		}
		if !client.IsInstalled(requested) {
			return fmt.Errorf("%w: %s", core.ErrNotInstalled, requested)
		}

		freed, err := client.Remove(cmd.Context(), requested, removeSink(os.Stderr, "Removing"))
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", requested, err)
		}
		logging.LogInfo("✅ Removed %s, freed %s", requested, formatBytes(freed))
		return outputRemoved(freed)
	},
	Example: `  # Remove one version
  arm-toolchain remove 19.1.5

  # Remove everything
  arm-toolchain remove all`,
}

func outputRemoved(freed int64) error {
	if !jsonOutput {
		return nil
	}
	return OutputJSON(CommandOutput{BytesFreed: &freed})
}
