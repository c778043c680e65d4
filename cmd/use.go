package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/repository/version"
)

var useCmd = &cobra.Command{
	Use:   "use <version|latest>",
	Short: "Set a toolchain version as active",
	Long: `Set a toolchain version as active. The version is installed first if it is missing.
The active version is used by 'locate' and 'run' when no version is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requested := version.Parse(args[0])

		client, err := newClient()
		if err != nil {
			return err
		}

		v := requested
		if requested.IsLatest() || !client.IsInstalled(requested) {
			tc, err := installVersion(cmd.Context(), client, requested, false)
			if err != nil {
				return err
			}
			v = version.ToolchainVersion{Name: filepath.Base(tc.Path)}
		}

		if active := client.Active(); active != nil && *active == v {
			logging.LogInfo("ℹ️  %s is already the active toolchain", v)
		} else {
			if err := client.SetActive(&v); err != nil {
				return err
			}
			logging.LogInfo("✅ %s is now the active toolchain", v)
		}

		if jsonOutput {
			return OutputJSON(CommandOutput{Toolchains: []ToolchainOutput{{
				Version:   v.Name,
				Path:      client.InstallPathFor(v),
				Active:    true,
				Installed: true,
			}}})
		}
		return nil
	},
	Example: `  # Activate an installed version
  arm-toolchain use 19.1.5

  # Install and activate the newest release
  arm-toolchain use latest`,
}

func init() {
	useCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation before installing")
}
