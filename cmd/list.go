package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/logging"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed toolchain versions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		versions, err := client.InstalledVersions()
		if err != nil {
			return err
		}
		active := client.Active()

		if jsonOutput {
			out := CommandOutput{Toolchains: []ToolchainOutput{}}
			for _, v := range versions {
				out.Toolchains = append(out.Toolchains, ToolchainOutput{
					Version:   v.Name,
					Path:      client.InstallPathFor(v),
					Active:    active != nil && *active == v,
					Installed: true,
				})
			}
			return OutputJSON(out)
		}

		if len(versions) == 0 {
			logging.LogInfo("ℹ️  No toolchains installed")
			logging.LogInfo("💡 Run 'arm-toolchain install' to install the newest release")
			return nil
		}

		for _, v := range versions {
			if active != nil && *active == v {
				logging.LogOutput("* %s (active)", v)
			} else {
				logging.LogOutput("  %s", v)
			}
		}
		return nil
	},
}
