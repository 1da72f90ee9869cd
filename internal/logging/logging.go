package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string
	Format string // "json" (default) or "text"
	Out    io.Writer
}

// New builds a logger whose JSON output uses timestamp, severity and
// message as field names.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	log.Out = opts.Out
	if log.Out == nil {
		log.Out = os.Stdout
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.Level = level

	if strings.EqualFold(opts.Format, "text") {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano}
		return log
	}
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	return log
}
