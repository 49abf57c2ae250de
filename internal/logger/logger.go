package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

// Options controls formatter, level and sink. Zero values fall back to the
// ENVIRONMENT, LOG_LEVEL and LOG_OUTPUT variables.
type Options struct {
	Environment string
	Level       string
	Output      io.Writer
}

func New() *Logger {
	return NewWithOptions(Options{})
}

func NewWithOptions(opts Options) *Logger {
	base := logrus.New()

	env := opts.Environment
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	// local = pretty console, anything else = JSON
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     opts.Output == nil,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	switch {
	case opts.Output != nil:
		base.SetOutput(opts.Output)
	case strings.EqualFold(os.Getenv("LOG_OUTPUT"), "stderr"):
		base.SetOutput(os.Stderr)
	default:
		base.SetOutput(os.Stdout)
	}

	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	base.SetLevel(parseLevel(level))

	return &Logger{Entry: logrus.NewEntry(base)}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", name)}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// RequestID returns the caller supplied X-Request-ID or a fresh uuid.
func RequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
