package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/repository/version"
	"github.com/vexide/arm-toolchain/toolchain"
)

var forceInstall bool

var installCmd = &cobra.Command{
	Use:   "install [version]",
	Short: "Install a toolchain version",
	Long: `Install a toolchain version from the upstream GitHub releases.
Without a version, or with "latest", the newest release is installed.
The first toolchain installed becomes the active one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requested := version.Parse(version.Latest)
		if len(args) == 1 {
			requested = version.Parse(args[0])
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		tc, err := installVersion(cmd.Context(), client, requested, forceInstall)
		if err != nil {
			return err
		}

		if jsonOutput {
			active := client.Active()
			v := version.ToolchainVersion{Name: filepath.Base(tc.Path)}
			return OutputJSON(CommandOutput{Toolchains: []ToolchainOutput{{
				Version:   v.Name,
				Path:      tc.Path,
				Active:    active != nil && *active == v,
				Installed: true,
			}}})
		}
		return nil
	},
	Example: `  # Install the newest release
  arm-toolchain install

  # Install a specific release
  arm-toolchain install 19.1.5

  # Reinstall without prompting
  arm-toolchain install 19.1.5 --force --yes`,
}

func init() {
	installCmd.Flags().BoolVarP(&forceInstall, "force", "f", false, "Reinstall even if the version is already installed")
	installCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// installVersion resolves requested, then downloads and installs it unless
// it is already present and force is unset.
func installVersion(ctx context.Context, client *toolchain.Client, requested version.ToolchainVersion, force bool) (*toolchain.InstalledToolchain, error) {
	logging.LogDebug("🔧 Resolving %s", requested)
	release, err := client.ResolveRelease(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", requested, err)
	}
	v := release.Version()

	if client.IsInstalled(v) && !force {
		logging.LogInfo("✅ %s is already installed", v)
		logging.LogInfo("💡 Use --force to reinstall it")
		return client.Toolchain(v)
	}

	hostOS, arches, err := toolchain.CurrentHost()
	if err != nil {
		return nil, err
	}
	asset, err := release.AssetFor(hostOS, arches)
	if err != nil {
		return nil, err
	}

	if !confirmInstall(fmt.Sprintf("Download and install %s (%s)?", asset.Name, formatBytes(asset.Size))) {
		return nil, errDeclined
	}

	logging.LogInfo("📥 Installing %s from %s", v, asset.Name)
	tc, err := client.Install(ctx, release, asset, installSink(os.Stderr))
	if err != nil {
		return nil, fmt.Errorf("installation of %s failed: %w", v, err)
	}

	logging.LogInfo("✅ Installed %s", v)
	logging.LogInfo("📂 Installation path: %s", tc.Path)
	if active := client.Active(); active == nil || *active != v {
		logging.LogInfo("ℹ️  To set this version as active, run: arm-toolchain use %s", v.Name)
	}
	return tc, nil
}
