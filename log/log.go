// Structured logging shared by every txnbed package.
//
// There are five levels in total: fatal, error, warn, info, debug.
// The default log output level is info, you can change it by:
// - call log.InitLogger() with the configured level
// - set environment variable `LOG_LEVEL`

package log

import (
	"os"
	"strings"

	plog "github.com/pingcap/log"
	"go.uber.org/zap"
)

func init() {
	level := "info"
	if l := os.Getenv("LOG_LEVEL"); len(l) != 0 {
		level = l
	}
	if err := InitLogger(level); err != nil {
		panic(err)
	}
}

// InitLogger replaces the global logger with one writing text records to
// stderr at the given level.
func InitLogger(level string) error {
	conf := &plog.Config{
		Level:  normalizeLevel(level),
		Format: "text",
	}
	lg, props, err := plog.InitLogger(conf)
	if err != nil {
		return err
	}
	plog.ReplaceGlobals(lg, props)
	return nil
}

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "fatal":
		return "fatal"
	case "error":
		return "error"
	case "warn", "warning":
		return "warn"
	case "debug":
		return "debug"
	}
	return "info"
}

// L returns the current global zap logger.
func L() *zap.Logger {
	return plog.L()
}

func Debug(msg string, fields ...zap.Field) {
	plog.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	plog.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	plog.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	plog.Error(msg, fields...)
}

// Fatal logs and terminates the process.
func Fatal(msg string, fields ...zap.Field) {
	plog.Fatal(msg, fields...)
}
