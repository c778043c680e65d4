package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/repository/version"
	"github.com/vexide/arm-toolchain/toolchain"
)

var (
	locateVersion string
	locateWhat    string
)

// Values accepted by locate --what
const (
	whatInstallDir = "install-dir"
	whatBin        = "bin"
	whatLib        = "lib"
	whatMultilib   = "multilib"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Print the path of an installed toolchain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		tc, err := resolveInstalled(client, locateVersion)
		if err != nil {
			return err
		}

		path, err := locatePath(tc, locateWhat)
		if err != nil {
			return err
		}

		if jsonOutput {
			return OutputJSON(CommandOutput{Path: path})
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
	Example: `  # Directory of the active toolchain
  arm-toolchain locate

  # Compiler binaries of a specific version
  arm-toolchain locate --version 19.1.5 --what bin`,
}

func init() {
	locateCmd.Flags().StringVar(&locateVersion, "version", "", "Version to locate (default: the active version)")
	locateCmd.Flags().StringVar(&locateWhat, "what", whatInstallDir, "Path to print: install-dir, bin, lib or multilib")
}

func locatePath(tc *toolchain.InstalledToolchain, what string) (string, error) {
	switch what {
	case whatInstallDir, "":
		return tc.Path, nil
	case whatBin:
		return tc.HostBinDir(), nil
	case whatLib:
		return tc.LibDir(), nil
	case whatMultilib:
		return tc.MultilibDir(), nil
	default:
		return "", fmt.Errorf("unknown path %q, expected one of: %s, %s, %s, %s",
			what, whatInstallDir, whatBin, whatLib, whatMultilib)
	}
}

// resolveInstalled returns the named installed version, or the active one
// when name is empty.
func resolveInstalled(client *toolchain.Client, name string) (*toolchain.InstalledToolchain, error) {
	if name == "" {
		active := client.Active()
		if active == nil {
			return nil, fmt.Errorf("%w: no toolchain is active, run 'arm-toolchain use <version>'", core.ErrNotInstalled)
		}
		return client.Toolchain(*active)
	}
	return client.Toolchain(version.Parse(name))
}
