// Package logging provides structured logging for the collapse viewer.
// It wraps log/slog with configurable levels, output formats and per-component
// loggers. The terminal UI owns stdout, so the default destination is stderr and
// interactive sessions are expected to log to a file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogLevel represents the severity of log messages
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a configuration string into a LogLevel.
// Unknown names fall back to InfoLevel.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides structured logging with context support
type Logger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
}

// Config represents logging configuration
type Config struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    string // "stdout", "stderr", "discard", or file path
	Component string
}

// DefaultConfig returns a sensible default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:     InfoLevel,
		Format:    "text",
		Output:    "stderr",
		Component: "collapse",
	}
}

// DefaultLogFile returns the log file used by interactive sessions.
func DefaultLogFile() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "collapse", "collapse.log"), nil
}

// NewLogger creates a new logger with the specified configuration
func NewLogger(config Config) (*Logger, error) {
	var output io.Writer
	switch config.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	case "discard":
		output = io.Discard
	default:
		if err := os.MkdirAll(filepath.Dir(config.Output), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory for %s: %w", config.Output, err)
		}
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.Output, err)
		}
		output = file
	}

	return NewLoggerWithWriter(config, output), nil
}

// NewLoggerWithWriter builds a logger that writes to w regardless of config.Output.
func NewLoggerWithWriter(config Config, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: slogLevel(config.Level),
	}

	var handler slog.Handler
	switch config.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		logger:    slog.New(handler),
		level:     config.Level,
		component: config.Component,
	}
}

// slogLevel converts our LogLevel to slog.Level
func slogLevel(level LogLevel) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext creates a new logger with additional context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{
		logger:    l.logger.With(slog.String("component", l.component)),
		level:     l.level,
		component: l.component,
	}
}

// WithComponent creates a new logger for a specific component
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		logger:    l.logger.With(slog.String("component", component)),
		level:     l.level,
		component: component,
	}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		logger:    l.logger.With(slog.Any(key, value)),
		level:     l.level,
		component: l.component,
	}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{
		logger:    l.logger.With(args...),
		level:     l.level,
		component: l.component,
	}
}

// Component returns the component name attached to this logger.
func (l *Logger) Component() string {
	return l.component
}

// Debug logs a debug level message
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level <= DebugLevel {
		l.logger.Debug(msg, args...)
	}
}

// Info logs an info level message
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level <= InfoLevel {
		l.logger.Info(msg, args...)
	}
}

// Warn logs a warning level message
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.level <= WarnLevel {
		l.logger.Warn(msg, args...)
	}
}

// Error logs an error level message
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.level <= ErrorLevel {
		l.logger.Error(msg, args...)
	}
}

// LogOperation logs the start and end of an operation with duration
func (l *Logger) LogOperation(operation string, fn func() error) error {
	start := time.Now()
	opLogger := l.WithField("operation", operation)

	opLogger.Debug("Operation starting")

	err := fn()
	duration := time.Since(start)

	if err != nil {
		opLogger.Error("Operation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	opLogger.Info("Operation completed",
		slog.Duration("duration", duration))
	return nil
}

// LogPhaseChange logs a panel leaving its static first phase
func (l *Logger) LogPhaseChange(from string, to string, height float64) {
	l.Debug("Render phase change",
		slog.String("from", from),
		slog.String("to", to),
		slog.Float64("height", height))
}

// LogMotion logs the motion decision taken for a panel update
func (l *Logger) LogMotion(mode string, target float64, animate bool, committed string) {
	l.Debug("Motion target",
		slog.String("mode", mode),
		slog.Float64("target", target),
		slog.Bool("animate", animate),
		slog.String("committed", committed))
}

// LogHeightReport logs a measurement arriving from the measurer
func (l *Logger) LogHeightReport(height float64, seq uint64, accepted bool, reason string) {
	fields := []interface{}{
		slog.Float64("height", height),
		slog.Uint64("seq", seq),
	}
	if accepted {
		l.Debug("Height report accepted", fields...)
		return
	}
	fields = append(fields, slog.String("reason", reason))
	l.Debug("Height report dropped", fields...)
}

// LogConfigLoad logs configuration loading operations
func (l *Logger) LogConfigLoad(configPath string, theme string) {
	l.Debug("Loading configuration",
		slog.String("config_path", configPath),
		slog.String("theme", theme))
}

// LogConfigError logs configuration-related errors
func (l *Logger) LogConfigError(operation string, err error) {
	l.Error("Configuration error",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
}

// LogDocumentLoad logs the result of loading a content document
func (l *Logger) LogDocumentLoad(path string, sections int, duration time.Duration, err error) {
	if err != nil {
		l.Warn("Document load failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return
	}
	l.Debug("Document loaded",
		slog.String("path", path),
		slog.Int("sections", sections),
		slog.Duration("duration", duration))
}

// LogUIStateChange logs user interface state transitions
func (l *Logger) LogUIStateChange(from string, to string, reason string) {
	l.Debug("UI state change",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("reason", reason))
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger with the specified configuration
func InitGlobalLogger(config Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return fmt.Errorf("failed to initialize global logger: %w", err)
	}
	globalLogger = logger
	return nil
}

// SetGlobalLogger replaces the global logger, mainly for tests.
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Fallback to default configuration if not initialized
		globalLogger, _ = NewLogger(DefaultConfig())
	}
	return globalLogger
}

// Component-specific logger creators
func GetCollapseLogger() *Logger {
	return GetGlobalLogger().WithComponent("collapse")
}

func GetSpringLogger() *Logger {
	return GetGlobalLogger().WithComponent("spring")
}

func GetMeasureLogger() *Logger {
	return GetGlobalLogger().WithComponent("measure")
}

func GetConfigLogger() *Logger {
	return GetGlobalLogger().WithComponent("config")
}

func GetUILogger() *Logger {
	return GetGlobalLogger().WithComponent("ui")
}

func GetContentLogger() *Logger {
	return GetGlobalLogger().WithComponent("content")
}
