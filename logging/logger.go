package logging

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel is the configured verbosity, independent of the backend.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface used across the kernel.
// Arguments after msg are slog-style alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NewSlogAdapter creates a Logger from *slog.Logger. *slog.Logger already has
// the right method set; the adapter only pins it behind the interface.
func NewSlogAdapter(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}

// LoggerConfig configures NewLogger.
type LoggerConfig struct {
	Level LogLevel
	// Format is "json" (default) or "text".
	Format    string
	Output    io.Writer
	AddSource bool
	// Component and RunID are attached to every record when set.
	Component   string
	RunID       string
	CustomAttrs map[string]any
}

// DefaultLoggerConfig returns a JSON, info level configuration on stdout.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// KernelLogger is a slog based Logger. With* methods return derived loggers;
// the receiver is never modified.
type KernelLogger struct {
	logger *slog.Logger
}

// NewLogger builds a KernelLogger. A nil cfg uses DefaultLoggerConfig.
func NewLogger(cfg *LoggerConfig) *KernelLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	if cfg.RunID != "" {
		logger = logger.With("run_id", cfg.RunID)
	}
	for k, v := range cfg.CustomAttrs {
		logger = logger.With(k, v)
	}
	return &KernelLogger{logger: logger}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Slog returns the underlying *slog.Logger.
func (l *KernelLogger) Slog() *slog.Logger { return l.logger }

// WithContext attaches key/value to every record of the derived logger.
func (l *KernelLogger) WithContext(key string, value any) *KernelLogger {
	return &KernelLogger{logger: l.logger.With(key, value)}
}

// WithComponent names the emitting component (kernel, skill, model, ...).
func (l *KernelLogger) WithComponent(c string) *KernelLogger {
	return l.WithContext("component", c)
}

// WithRun attaches the identifier of the context a function runs against.
func (l *KernelLogger) WithRun(runID string) *KernelLogger {
	return l.WithContext("run_id", runID)
}

func (l *KernelLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *KernelLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *KernelLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *KernelLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...any) {}
func (NoOpLogger) Info(string, ...any)  {}
func (NoOpLogger) Warn(string, ...any)  {}
func (NoOpLogger) Error(string, ...any) {}
