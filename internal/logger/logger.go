package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log *logrus.Logger
	mu  sync.Mutex
)

// LogLevel represents the logging level
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	PanicLevel LogLevel = "panic"
	FatalLevel LogLevel = "fatal"
)

// Format selects the log line encoding
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// Init initializes the logger with the specified level and text output
func Init(level LogLevel) {
	InitWithFormat(level, TextFormat)
}

// InitWithFormat initializes the logger with the specified level and encoding
func InitWithFormat(level LogLevel, format Format) {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	switch Format(strings.ToLower(string(format))) {
	case JSONFormat:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l.SetLevel(parseLevel(level))

	mu.Lock()
	log = l
	mu.Unlock()
}

func parseLevel(level LogLevel) logrus.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Get returns the logger instance
func Get() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		// Quiet by default so library users and tests are not flooded
		log = logrus.New()
		log.SetOutput(os.Stdout)
		log.SetLevel(logrus.PanicLevel)
	}
	return log
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	Get().SetOutput(w)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	Get().Debugf(format, args...)
}

// Info logs an info message
func Info(args ...interface{}) {
	Get().Info(args...)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	Get().Infof(format, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Get().Warnf(format, args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	Get().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...interface{}) {
	Get().Fatalf(format, args...)
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Get().WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}
