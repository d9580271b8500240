package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	})
	return l
}

// SetOutput redirects log lines, mostly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLevel sets the minimum level by name. Unknown names keep the current level.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return
	}
	logger.SetLevel(parsed)
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Error(msg)
}
