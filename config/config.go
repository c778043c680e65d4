package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/vexide/arm-toolchain/logging"
)

const (
	appDirName = "arm-toolchain"

	// ConfigPathEnv overrides the default configuration file location.
	ConfigPathEnv = "ARM_TOOLCHAIN_CONFIG_PATH"

	DefaultAPIURL    = "https://api.github.com"
	DefaultRepoOwner = "arm"
	DefaultRepoName  = "arm-toolchain"
	DefaultUserAgent = "vexide/arm-toolchain (https://github.com/vexide/arm-toolchain)"
	DefaultTimeout   = 30
)

// GeneralConfig holds general configuration parameters
type GeneralConfig struct {
	LogLevel      string `toml:"log_level"`
	LogPath       string `toml:"log_path"`
	ToolchainsDir string `toml:"toolchains_dir"`
	CacheDir      string `toml:"cache_dir"`
	TrashDir      string `toml:"trash_dir"`
}

// SourceConfig describes where releases are published
type SourceConfig struct {
	APIURL             string `toml:"github_api_url"`
	RepoOwner          string `toml:"repo_owner"`
	RepoName           string `toml:"repo_name"`
	UserAgent          string `toml:"user_agent"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

// Config represents the main configuration structure
type Config struct {
	General GeneralConfig `toml:"general"`
	Source  SourceConfig  `toml:"source"`
}

// HTTPTimeout returns the per-request timeout for API calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Source.HTTPTimeoutSeconds) * time.Second
}

// ExpandTilde expands ~ to the user's home directory
func ExpandTilde(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// dataDir returns the per-user directory for persistent application data.
func dataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appDirName), nil
		}
	case "darwin":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "dev.vexide."+appDirName), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" && filepath.IsAbs(dir) {
			return filepath.Join(dir, appDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appDirName), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() (*Config, error) {
	data, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine data directory: %w", err)
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine cache directory: %w", err)
	}
	cache = filepath.Join(cache, appDirName)

	return &Config{
		General: GeneralConfig{
			LogLevel:      "info",
			ToolchainsDir: filepath.Join(data, "llvm-toolchains"),
			CacheDir:      filepath.Join(cache, "downloads", "llvm-toolchains"),
			TrashDir:      filepath.Join(cache, "trash"),
		},
		Source: SourceConfig{
			APIURL:             DefaultAPIURL,
			RepoOwner:          DefaultRepoOwner,
			RepoName:           DefaultRepoName,
			UserAgent:          DefaultUserAgent,
			HTTPTimeoutSeconds: DefaultTimeout,
		},
	}, nil
}

// DefaultConfigPath returns <user config dir>/arm-toolchain/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, "config.toml"), nil
}

// LoadConfig loads and parses the configuration file
// Priority: cliPath > ARM_TOOLCHAIN_CONFIG_PATH env var > default path.
// A missing file at the default path is not an error.
func LoadConfig(cliPath string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	var configPath string
	explicit := true
	if cliPath != "" {
		configPath = cliPath
	} else if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		configPath = envPath
	} else {
		explicit = false
		configPath, err = DefaultConfigPath()
		if err != nil {
			logging.PreLog("DEBUG", "⚠️ No user config directory, using built-in defaults: %v", err)
			return cfg, cfg.Validate()
		}
	}

	logging.PreLog("DEBUG", "📂 Loading configuration from: %s", configPath)

	file, err := os.ReadFile(configPath)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			logging.PreLog("DEBUG", "📂 No configuration file, using built-in defaults")
			logging.SetPreLogLevel(cfg.General.LogLevel)
			return cfg, cfg.Validate()
		}
		logging.PreLog("ERROR", "❌ Failed to read config file: %v", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := toml.Unmarshal(file, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to parse config file '%s': %v\n", configPath, err)
		logging.PreLog("ERROR", "❌ Failed to parse config file: %v", err)
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	fileCfg.applyDefaults(cfg)
	cfg = &fileCfg

	logging.PreLog("DEBUG", "🔍 Decoded Config: %+v", *cfg)
	logging.SetPreLogLevel(cfg.General.LogLevel)

	if err := cfg.Validate(); err != nil {
		logging.PreLog("ERROR", "❌ Configuration validation failed: %v", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.PreLog("DEBUG", "✅ Configuration successfully loaded and validated.")
	return cfg, nil
}

// applyDefaults fills keys left unset in the file from def.
func (c *Config) applyDefaults(def *Config) {
	fill := func(dst *string, val string) {
		if *dst == "" {
			*dst = val
		}
	}
	fill(&c.General.LogLevel, def.General.LogLevel)
	fill(&c.General.ToolchainsDir, def.General.ToolchainsDir)
	fill(&c.General.CacheDir, def.General.CacheDir)
	fill(&c.General.TrashDir, def.General.TrashDir)
	fill(&c.Source.APIURL, def.Source.APIURL)
	fill(&c.Source.RepoOwner, def.Source.RepoOwner)
	fill(&c.Source.RepoName, def.Source.RepoName)
	fill(&c.Source.UserAgent, def.Source.UserAgent)
	if c.Source.HTTPTimeoutSeconds == 0 {
		c.Source.HTTPTimeoutSeconds = def.Source.HTTPTimeoutSeconds
	}
}

// EnsureDirectoriesExist checks and creates required directories
func EnsureDirectoriesExist(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil, cannot ensure directories")
	}

	logging.LogDebug("🔍 Checking directory paths: ToolchainsDir=%s, CacheDir=%s, LogPath=%s",
		cfg.General.ToolchainsDir, cfg.General.CacheDir, cfg.General.LogPath)

	paths := []string{cfg.General.ToolchainsDir, cfg.General.CacheDir}
	if cfg.General.LogPath != "" {
		paths = append(paths, cfg.General.LogPath)
	}

	for _, path := range paths {
		logging.LogDebug("📂 Ensuring directory exists: %s", path)
		if err := os.MkdirAll(path, os.ModePerm); err != nil {
			logging.LogError("❌ Failed to create directory %s: %v", path, err)
			return fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}

	return nil
}

// Validate checks the configuration validity and expands ~ in paths
func (c *Config) Validate() error {
	dirs := []struct {
		name string
		val  *string
	}{
		{"toolchains_dir", &c.General.ToolchainsDir},
		{"cache_dir", &c.General.CacheDir},
		{"trash_dir", &c.General.TrashDir},
		{"log_path", &c.General.LogPath},
	}
	for _, d := range dirs {
		expanded, err := ExpandTilde(*d.val)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", d.name, err)
		}
		*d.val = expanded
	}

	if c.General.ToolchainsDir == "" || c.General.CacheDir == "" || c.General.TrashDir == "" {
		return fmt.Errorf("toolchains_dir, cache_dir and trash_dir must be set")
	}
	if filepath.Clean(c.General.ToolchainsDir) == filepath.Clean(c.General.CacheDir) {
		return fmt.Errorf("toolchains_dir and cache_dir must differ")
	}

	u, err := url.Parse(c.Source.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("github_api_url is not a valid URL: %q", c.Source.APIURL)
	}
	if c.Source.RepoOwner == "" || c.Source.RepoName == "" {
		return fmt.Errorf("repo_owner and repo_name must be set")
	}
	if c.Source.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive, got %d", c.Source.HTTPTimeoutSeconds)
	}

	return nil
}
