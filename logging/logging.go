package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const logFileName = "arm-toolchain.log"

var (
	logMu   sync.RWMutex
	logger  zerolog.Logger
	logFile *os.File

	// output receives user-facing lines written by LogOutput.
	output io.Writer = os.Stdout

	preLogMu    sync.Mutex
	preLogLevel = zerolog.InfoLevel
	preLogs     []preLogEntry
	initialized bool
)

type preLogEntry struct {
	level zerolog.Level
	msg   string
}

func init() {
	logger = newLogger(zerolog.InfoLevel, false, nil)
}

func newLogger(level zerolog.Level, jsonFormat bool, file io.Writer) zerolog.Logger {
	var console io.Writer = os.Stderr
	if !jsonFormat {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.TimeOnly,
		}
	}

	writers := []io.Writer{console}
	if file != nil {
		writers = append(writers, file)
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// parseLevel accepts zerolog level names in any case and defaults to info.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// InitLogger configures the global logger. When logPath is set, entries are
// also appended to a log file in that directory. Messages recorded with
// PreLog before this call are replayed at the new level.
func InitLogger(logPath, level string, jsonFormat bool) error {
	logMu.Lock()
	defer logMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var file io.Writer
	if logPath != "" {
		if err := os.MkdirAll(logPath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(logPath, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		file = f
	}

	logger = newLogger(parseLevel(level), jsonFormat, file)

	preLogMu.Lock()
	pending := preLogs
	preLogs = nil
	initialized = true
	preLogMu.Unlock()

	for _, entry := range pending {
		logger.WithLevel(entry.level).Msg(entry.msg)
	}
	return nil
}

// SetPreLogLevel filters PreLog messages recorded before InitLogger runs.
func SetPreLogLevel(level string) {
	preLogMu.Lock()
	defer preLogMu.Unlock()
	preLogLevel = parseLevel(level)
}

// PreLog records a message emitted before the logger is configured.
func PreLog(level, format string, args ...interface{}) {
	lvl := parseLevel(level)
	msg := fmt.Sprintf(format, args...)

	preLogMu.Lock()
	if !initialized {
		if lvl >= preLogLevel || lvl >= zerolog.ErrorLevel {
			preLogs = append(preLogs, preLogEntry{level: lvl, msg: msg})
		}
		preLogMu.Unlock()
		return
	}
	preLogMu.Unlock()

	logAt(lvl, msg)
}

func logAt(level zerolog.Level, msg string) {
	logMu.RLock()
	l := logger
	logMu.RUnlock()
	l.WithLevel(level).Msg(msg)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logAt(zerolog.DebugLevel, fmt.Sprintf(format, args...))
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logAt(zerolog.InfoLevel, fmt.Sprintf(format, args...))
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logAt(zerolog.WarnLevel, fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logAt(zerolog.ErrorLevel, fmt.Sprintf(format, args...))
}

// LogOutput prints a user-facing line to standard output, bypassing levels.
func LogOutput(format string, args ...interface{}) {
	logMu.RLock()
	w := output
	logMu.RUnlock()
	fmt.Fprintf(w, format+"\n", args...)
}

// SetOutput redirects LogOutput and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	logMu.Lock()
	defer logMu.Unlock()
	prev := output
	output = w
	return prev
}

// Logger returns a copy of the configured zerolog logger.
func Logger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// Close releases the log file, if any.
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
		logger = newLogger(logger.GetLevel(), false, nil)
	}
}
