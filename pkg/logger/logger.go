package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger interface defines the logging contract
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithComponent(component string) Logger
}

// Fields represents a map of key-value pairs for structured logging
type Fields map[string]interface{}

// Config holds configuration options for the logger
type Config struct {
	Level         string `json:"level"`
	Format        Format `json:"format"`
	Console       bool   `json:"console"`
	Dir           string `json:"dir,omitempty"`
	File          string `json:"file,omitempty"`
	RetentionDays int    `json:"retention_days,omitempty"`
	MaxSizeMB     int    `json:"max_size_mb,omitempty"`
	CallerInfo    bool   `json:"caller_info,omitempty"`
}

// Format represents log output formats
type Format string

const (
	JSONFormat Format = "json"
	TextFormat Format = "text"
)

// logrusLogger wraps a logrus entry so fields survive chained With* calls
type logrusLogger struct {
	entry *logrus.Entry
}

// DefaultConfig returns a console-only configuration at info level
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  TextFormat,
		Console: true,
	}
}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	switch c.Format {
	case JSONFormat, TextFormat, "":
	default:
		return fmt.Errorf("invalid log format: %s", c.Format)
	}

	if c.File != "" && c.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}
	if c.MaxSizeMB < 0 {
		return fmt.Errorf("max size cannot be negative")
	}
	if !c.Console && strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("logger needs console output or a log file")
	}

	return nil
}

// ParseLevel accepts logrus level names and the WARNING/CRITICAL spellings used in older configs.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return logrus.InfoLevel, nil
	case "critical":
		return logrus.FatalLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return lvl, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

// NewLogger creates a logger writing to the console and, when File is set, to a rotating
// log file under Dir. The returned closer releases the file handle.
func NewLogger(config *Config) (Logger, io.Closer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid logger configuration: %w", err)
	}

	level, _ := ParseLevel(config.Level)

	var writers []io.Writer
	var closer io.Closer = nopCloser{}
	if config.Console {
		writers = append(writers, os.Stdout)
	}
	if config.File != "" {
		rotator, err := newRotator(config)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetFormatter(getFormatter(config))
	logger.SetReportCaller(config.CallerInfo)

	return &logrusLogger{entry: logrus.NewEntry(logger)}, closer, nil
}

// NewWriterLogger creates a logger that writes text lines to w. Useful for tests and CLI output capture.
func NewWriterLogger(w io.Writer, level string) Logger {
	logger := logrus.New()
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	return &logrusLogger{entry: logrus.NewEntry(logger)}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return NewWriterLogger(io.Discard, "error")
}

func newRotator(config *Config) (*lumberjack.Logger, error) {
	dir := config.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	maxSize := config.MaxSizeMB
	if maxSize == 0 {
		maxSize = 100
	}

	return &lumberjack.Logger{
		Filename:  filepath.Join(dir, config.File),
		MaxSize:   maxSize,
		MaxAge:    config.RetentionDays,
		LocalTime: true,
	}, nil
}

func getFormatter(config *Config) logrus.Formatter {
	switch config.Format {
	case JSONFormat:
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return fmt.Sprintf("%s()", f.Function), fmt.Sprintf("%s:%d", filename, f.Line)
			},
		}
	default:
		// Colors would end up as escape codes in the log file.
		return &logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			DisableColors:   config.File != "",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return "", fmt.Sprintf("%s:%d", filename, f.Line)
			},
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Implement Logger interface

func (l *logrusLogger) Debug(args ...interface{}) {
	l.entry.Debug(args...)
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(args ...interface{}) {
	l.entry.Info(args...)
}

func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warn(args ...interface{}) {
	l.entry.Warn(args...)
}

func (l *logrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Error(args ...interface{}) {
	l.entry.Error(args...)
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{entry: l.entry.WithError(err)}
}

func (l *logrusLogger) WithComponent(component string) Logger {
	return l.WithField("component", component)
}
