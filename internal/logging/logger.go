// Package logging is the process-wide structured logger of jiradesk. Messages
// are lower case with key/value attributes and go to stderr, optionally
// teed into a daily file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogLevel is a LOG_LEVEL value.
type LogLevel string

const (
	// LevelDebug adds one line per Jira request and per facade operation.
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var defaultLogger *slog.Logger

func init() {
	SetupLogger(os.Stderr, LevelFromEnv())
}

// LevelFromEnv reads LOG_LEVEL, defaulting to info.
func LevelFromEnv() LogLevel {
	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = string(LevelInfo)
	}
	return LogLevel(logLevelStr)
}

// SetupLogger replaces the package logger (and slog's default) with a text
// handler writing to w. Unknown levels fall back to info.
func SetupLogger(w io.Writer, level LogLevel) {
	slogLevel, ok := slogLevels[level]
	if !ok {
		slogLevel = slog.LevelInfo
	}

	defaultLogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(defaultLogger)
}

var slogLevels = map[LogLevel]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// OpenLogFile opens today's log file under ~/.<appName>/logs, creating the
// directory when needed. The caller owns the returned file.
func OpenLogFile(appName string) (*os.File, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return openLogFileIn(filepath.Join(homeDir, "."+appName, "logs"), appName, time.Now())
}

func openLogFileIn(dir, appName string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", appName, now.Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Debug logs a message at debug level.
func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

// Info logs a message at info level.
func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

// Warn logs a message at warn level.
func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

// Error logs a message at error level.
func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

// GetLogger returns the package logger, for components that attach their
// own attributes with With.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// MaskSensitive shortens an API token to a prefix safe for logs and
// "config show".
func MaskSensitive(value string) string {
	if value == "" {
		return "<not set>"
	}
	if len(value) <= 4 {
		return "<set>"
	}
	return value[:4] + "..." + strings.Repeat("*", 3)
}
