package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vexide/arm-toolchain/config"
	"github.com/vexide/arm-toolchain/downloader/network"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/repository"
	"github.com/vexide/arm-toolchain/toolchain"
)

// Global config variable
var cfg *config.Config

// Global flags
var configFile string

// Root command
var rootCmd = &cobra.Command{
	Use:   "arm-toolchain",
	Short: "arm-toolchain - Arm Toolchain for Embedded version manager",
	Long: `arm-toolchain installs, activates and runs versions of the Arm Toolchain for Embedded
(an LLVM distribution for bare-metal Arm targets) published as GitHub releases.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration with optional config file override
		var err error
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := config.EnsureDirectoriesExist(cfg); err != nil {
			return fmt.Errorf("error ensuring directories: %w", err)
		}

		if err := logging.InitLogger(cfg.General.LogPath, cfg.General.LogLevel, jsonOutput || jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

func init() {
	logging.PreLog("DEBUG", "Initializing arm-toolchain...")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(availableCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default: "+config.ConfigPathEnv+" or the user config directory)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Output logs in JSON format")
}

// newClient builds a toolchain client from the loaded configuration.
func newClient() (*toolchain.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}

	source := repository.NewGitHubClient(repository.GitHubOptions{
		APIURL:    cfg.Source.APIURL,
		Owner:     cfg.Source.RepoOwner,
		Repo:      cfg.Source.RepoName,
		UserAgent: cfg.Source.UserAgent,
		Token:     os.Getenv("GITHUB_TOKEN"),
		Timeout:   cfg.HTTPTimeout(),
	})

	return toolchain.NewClient(toolchain.ClientOptions{
		ToolchainsDir: cfg.General.ToolchainsDir,
		CacheDir:      cfg.General.CacheDir,
		TrashDir:      cfg.General.TrashDir,
		Source:        source,
		Network:       network.NewClient(cfg.Source.UserAgent, cfg.HTTPTimeout()),
	})
}

// Execute runs the root command
func Execute() {
	ctx, stop := interruptContext()
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ExitWithError(err)
	}
	logging.Close()
}
