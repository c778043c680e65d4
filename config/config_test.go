package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromCLIPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[general]
log_level = "debug"
toolchains_dir = "` + filepath.ToSlash(filepath.Join(dir, "toolchains")) + `"
cache_dir = "` + filepath.ToSlash(filepath.Join(dir, "cache")) + `"

[source]
repo_owner = "example"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, filepath.Join(dir, "toolchains"), filepath.Clean(cfg.General.ToolchainsDir))
	assert.Equal(t, "example", cfg.Source.RepoOwner)
	// Keys absent from the file fall back to defaults.
	assert.Equal(t, DefaultRepoName, cfg.Source.RepoName)
	assert.Equal(t, DefaultAPIURL, cfg.Source.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Source.HTTPTimeoutSeconds)
	assert.NotEmpty(t, cfg.General.TrashDir)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.toml")
	require.NoError(t, os.WriteFile(path, []byte("[source]\nrepo_name = \"from-env\"\n"), 0644))
	t.Setenv(ConfigPathEnv, path)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Source.RepoName)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\nlog_level = "), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := DefaultConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"empty cache dir", func(c *Config) { c.General.CacheDir = "" }, "must be set"},
		{"same dirs", func(c *Config) { c.General.CacheDir = c.General.ToolchainsDir }, "must differ"},
		{"bad api url", func(c *Config) { c.Source.APIURL = "not a url" }, "github_api_url"},
		{"zero timeout", func(c *Config) { c.Source.HTTPTimeoutSeconds = 0 }, "http_timeout_seconds"},
		{"missing repo", func(c *Config) { c.Source.RepoName = "" }, "repo_owner and repo_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandTilde("~/toolchains")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "toolchains"), got)

	got, err = ExpandTilde("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = ExpandTilde("~user/path")
	require.NoError(t, err)
	assert.Equal(t, "~user/path", got)
}

func TestEnsureDirectoriesExist(t *testing.T) {
	dir := t.TempDir()
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	cfg.General.ToolchainsDir = filepath.Join(dir, "a", "toolchains")
	cfg.General.CacheDir = filepath.Join(dir, "b", "cache")
	cfg.General.LogPath = filepath.Join(dir, "logs")

	require.NoError(t, EnsureDirectoriesExist(cfg))
	for _, p := range []string{cfg.General.ToolchainsDir, cfg.General.CacheDir, cfg.General.LogPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	assert.Error(t, EnsureDirectoriesExist(nil))
}
