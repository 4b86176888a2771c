package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
}

// Logger exposes the shared logger so callers can attach fields.
func Logger() *logrus.Logger {
	return logger
}

// SetLogLevel sets the verbosity of the shared logger. Unknown levels fall back to info.
func SetLogLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// LogDebug logs a debug message.
func LogDebug(format string, args ...any) {
	logger.Debugf(format, args...)
}

// LogInfo logs an informational message.
func LogInfo(format string, args ...any) {
	logger.Infof(format, args...)
}

// LogWarn logs a warning with its cause.
func LogWarn(msg string, err error) {
	logger.WithError(err).Warn(msg)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}
