package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger

	// shared so config can change the level after init
	level = new(slog.LevelVar)
)

func init() {
	env := os.Getenv("ENVIRONMENT")

	out := io.Writer(os.Stderr)
	if env == "production" {
		out = os.Stdout
	}

	defaultLogger = newLogger(out, env, os.Getenv("LOG_LEVEL"))
}

// JSON at info in production, text at debug elsewhere. lvl overrides both.
func newLogger(out io.Writer, env, lvl string) *slog.Logger {
	production := env == "production"

	switch {
	case lvl != "":
		level.Set(ParseLevel(lvl))
	case production:
		level.Set(slog.LevelInfo)
	default:
		level.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: level}

	if production {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// unknown names fall back to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func SetLevel(s string) {
	level.Set(ParseLevel(s))
}

func Default() *slog.Logger {
	return defaultLogger
}

// a logger carrying fixed attributes, e.g. With("component", "filler")
func With(args ...any) *slog.Logger {
	return defaultLogger.With(args...)
}

func Debug(msg string, args ...any) {
	defaultLogger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	defaultLogger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	defaultLogger.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
}

func ErrorErr(err error, msg string, args ...any) {
	defaultLogger.Error(msg, append(args, "error", err)...)
}

// logs and exits, for commands only
func Fatal(msg string, args ...any) {
	defaultLogger.Error(msg, args...)
	os.Exit(1)
}
