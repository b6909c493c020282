// Package logging builds the logrus logger shared by the orchestrator and
// the CLI.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nhle/taskflow/internal/model"
)

// New returns a text logger writing to out at level. An unknown level
// falls back to info.
func New(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Open returns a logger for cfg. When cfg.File is set, output goes to a
// size-rotated file instead of stderr; the returned closer releases it.
func Open(cfg model.LogConfig, stderr io.Writer) (*logrus.Logger, io.Closer) {
	if cfg.File == "" {
		return New(cfg.Level, stderr), io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return New(cfg.Level, file), file
}
