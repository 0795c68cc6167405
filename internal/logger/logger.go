// Package logger configures the process-wide structured logger.
package logger

import (
	"io"
	"os"

	"moonex/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance. Init must be called before use;
// the zero value is a usable stderr logger so tests need no setup.
var Log = logrus.New()

// Init configures level, format and output from the environment.
// When LOG_FILE is set, output is rotated with lumberjack and mirrored
// to stdout.
func Init() {
	level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if config.IsProduction() {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if file := config.GetEnv("LOG_FILE", ""); file != "" {
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    config.GetIntEnv("LOG_MAX_SIZE_MB", 100),
			MaxBackups: config.GetIntEnv("LOG_MAX_BACKUPS", 5),
			MaxAge:     config.GetIntEnv("LOG_MAX_AGE_DAYS", 28),
			Compress:   true,
		}
		Log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}
}

// WithComponent returns an entry tagged with the originating component.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
