package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/logging"
)

var cleanTrash bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete cached downloads",
	Long: `Delete cached and partially downloaded archives.
With --trash, installs replaced by reinstalls are deleted too.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		freed, err := client.PurgeCache()
		if err != nil {
			return err
		}
		logging.LogDebug("🧹 Cache purged: %d bytes", freed)

		if cleanTrash {
			trashed, err := client.EmptyTrash()
			if err != nil {
				return err
			}
			logging.LogDebug("🧹 Trash emptied: %d bytes", trashed)
			freed += trashed
		}

		if jsonOutput {
			return OutputJSON(CommandOutput{BytesFreed: &freed})
		}
		logging.LogInfo("✅ Freed %s", formatBytes(freed))
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanTrash, "trash", false, "Also empty the trash of replaced installs")
}
