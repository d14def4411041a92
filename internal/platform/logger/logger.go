package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type Options struct {
	Level  Level
	Format Format
	App    string
}

// zapLogger adapts a *zap.SugaredLogger to the Logger interface so handlers
// and services never import zap directly.
type zapLogger struct {
	s *zap.SugaredLogger
}

func New(opts Options) Logger {
	encoding := "console"
	if opts.Format == FormatJSON {
		encoding = "json"
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(opts.Level.zap())
	cfg.Encoding = encoding
	cfg.OutputPaths = []string{"stdout"}
	cfg.DisableStacktrace = true

	z, err := cfg.Build()
	if err != nil {
		// zap only fails on bad config
		z = zap.NewNop()
	}

	s := z.Sugar()
	if strings.TrimSpace(opts.App) != "" {
		s = s.With("app", strings.TrimSpace(opts.App))
	}
	return &zapLogger{s: s}
}

// NewFromEnv builds a logger from env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME=paws-and-claws (optional)
func NewFromEnv() Logger {
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    os.Getenv("APP_NAME"),
	})
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &zapLogger{s: l.s.With(kv(fields)...)}
}

func (l *zapLogger) Debug(msg string, fields map[string]any) { l.s.Debugw(msg, kv(fields)...) }
func (l *zapLogger) Info(msg string, fields map[string]any)  { l.s.Infow(msg, kv(fields)...) }
func (l *zapLogger) Warn(msg string, fields map[string]any)  { l.s.Warnw(msg, kv(fields)...) }
func (l *zapLogger) Error(msg string, fields map[string]any) { l.s.Errorw(msg, kv(fields)...) }

func kv(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out = append(out, k, v)
	}
	return out
}
