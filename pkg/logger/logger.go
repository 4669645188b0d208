// Package logger is the process-wide structured logger. Every record carries
// the call site as a "source" attribute relative to the working directory.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Frames between runtime.Caller and user code: log -> Info/Warn/... -> caller.
const callerSkipFrames = 3

// Logger is the ctx-first logging surface used across the service.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	// Fatal logs at error level and exits the process.
	Fatal(ctx context.Context, msg string, fields ...Field)

	// Named nests subsequent fields under a group of that name.
	Named(name string) Logger
}

// Field is one structured attribute.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field        { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type slogLogger struct {
	sl *slog.Logger
}

func (l *slogLogger) Named(name string) Logger {
	return &slogLogger{sl: l.sl.WithGroup(name)}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if !l.sl.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", callSite()))
	l.sl.LogAttrs(ctx, level, msg, attrs...)
}

var (
	global   Logger
	levelVar slog.LevelVar
	// workDir is resolved once by Init; empty means report base names only.
	workDir string
)

// Output formats accepted by WithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type initConfig struct {
	format string
	writer io.Writer
}

// InitOption configures Init.
type InitOption func(*initConfig)

// WithFormat selects the handler: "text" (default) or "json".
func WithFormat(format string) InitOption {
	return func(c *initConfig) {
		if format != "" {
			c.format = strings.ToLower(strings.TrimSpace(format))
		}
	}
}

// WithWriter redirects log output. Defaults to stdout.
func WithWriter(w io.Writer) InitOption {
	return func(c *initConfig) {
		if w != nil {
			c.writer = w
		}
	}
}

// Init installs the global logger at info level. It may be called again to
// switch format or writer.
func Init(opts ...InitOption) error {
	cfg := initConfig{format: FormatText, writer: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}

	hopts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	switch cfg.format {
	case FormatText:
		h = slog.NewTextHandler(cfg.writer, hopts)
	case FormatJSON:
		h = slog.NewJSONHandler(cfg.writer, hopts)
	default:
		return fmt.Errorf("unknown log format: %s", cfg.format)
	}
	levelVar.Set(slog.LevelInfo)
	workDir, _ = os.Getwd()
	global = &slogLogger{sl: slog.New(h)}
	return nil
}

// callSite formats the logging call as path/file.go:line.
func callSite() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}
	if workDir != "" {
		if rel, err := filepath.Rel(workDir, file); err == nil {
			return fmt.Sprintf("%s:%d", rel, line)
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Get returns the global logger and panics if Init was never called.
func Get() Logger {
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named is shorthand for Get().Named(name).
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync exists for call sites that flush on shutdown; slog writes unbuffered.
func Sync() error {
	return nil
}

// SetLevel changes the minimum level of the global logger.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString accepts debug, info, warn/warning or error, case-insensitively.
// The empty string means info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
