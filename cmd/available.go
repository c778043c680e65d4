package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/logging"
)

// availableCmd represents the available command
var availableCmd = &cobra.Command{
	Use:   "available",
	Short: "List recent toolchain releases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		releases, err := client.RecentReleases(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			out := CommandOutput{Toolchains: []ToolchainOutput{}}
			for _, r := range releases {
				v := r.Version()
				out.Toolchains = append(out.Toolchains, ToolchainOutput{
					Version:   v.Name,
					Installed: client.IsInstalled(v),
				})
			}
			return OutputJSON(out)
		}

		if len(releases) == 0 {
			logging.LogInfo("ℹ️  No releases found")
			return nil
		}

		for _, r := range releases {
			v := r.Version()
			if client.IsInstalled(v) {
				logging.LogOutput("%s (installed)", v)
			} else {
				logging.LogOutput("%s", v)
			}
		}
		return nil
	},
}
