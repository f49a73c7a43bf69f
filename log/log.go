// Package log is the diagnostic stream of malcr: a thin proxy over logrus writing to stderr,
// optionally mirrored into a dated file.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/malcr/malcr/filesystem"
	"github.com/malcr/malcr/key"
	"github.com/malcr/malcr/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Setup configures output, formatting and severity from the global configuration.
// Stdout is never used: it carries the unresolved-title report.
func Setup() error {
	var out io.Writer = os.Stderr

	if viper.GetBool(key.LogsFile) {
		path := filepath.Join(where.Logs(), fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
		f, err := filesystem.OpenAppend(path)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}
	logrus.SetOutput(out)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// WithFields starts an entry carrying structured context.
func WithFields(fields map[string]any) *logrus.Entry {
	return logrus.WithFields(fields)
}

func Fatal(args ...interface{}) {
	logrus.Fatal(args...)
}
func Error(args ...interface{}) {
	logrus.Error(args...)
}
func Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}
func Warn(args ...interface{}) {
	logrus.Warn(args...)
}
func Warnf(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}
func Info(args ...interface{}) {
	logrus.Info(args...)
}
func Infof(format string, args ...interface{}) {
	logrus.Infof(format, args...)
}
func Debug(args ...interface{}) {
	logrus.Debug(args...)
}
func Debugf(format string, args ...interface{}) {
	logrus.Debugf(format, args...)
}
