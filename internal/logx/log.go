// Package logx wraps charmbracelet/log into the package-level logger the
// rest of the server calls.
package logx

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger = log.New(os.Stderr)

// Init configures the process-wide logger: a prefix naming the process and
// a minimum level, both set once at startup from Config.
func Init(prefix string, level string) {
	logger.SetPrefix(prefix)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

func Fatal(msg string, args ...any) { logger.Fatal(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Debug(msg string, args ...any) { logger.Debug(msg, args...) }

// With returns a sub-logger carrying fixed key/value pairs, for request or
// game-scoped logging (e.g. logx.With("game_id", id)).
func With(args ...any) *log.Logger {
	return logger.With(args...)
}
