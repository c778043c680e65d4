package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{" Warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestLogOutputWritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	LogOutput("installed %s", "v19.1.5")
	assert.Equal(t, "installed v19.1.5\n", buf.String())
}

func TestInitLoggerWritesFileAndReplaysPreLogs(t *testing.T) {
	dir := t.TempDir()
	defer Close()

	preLogMu.Lock()
	initialized = false
	preLogMu.Unlock()

	SetPreLogLevel("debug")
	PreLog("DEBUG", "loading configuration from %s", "config.toml")

	require.NoError(t, InitLogger(dir, "debug", true))
	LogInfo("ready")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "loading configuration from config.toml")
	assert.Contains(t, string(data), "ready")
	assert.Equal(t, zerolog.DebugLevel, Logger().GetLevel())
}
