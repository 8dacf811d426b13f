package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
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

// ParseLevel maps a --log-level value to a Level. Unknown values yield InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel
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

// zap has no trace level; it sits one step below debug.
const zapTraceLevel = zapcore.DebugLevel - 1

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case TraceLevel:
		return zapTraceLevel
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(l zapcore.Level) Level {
	switch {
	case l <= zapTraceLevel:
		return TraceLevel
	case l == zapcore.DebugLevel:
		return DebugLevel
	case l == zapcore.InfoLevel:
		return InfoLevel
	case l == zapcore.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

// Config holds the logger configuration
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
}

// Logger represents the logger instance
type Logger struct {
	config Config
	zl     *zap.Logger
}

// Default logger instance
var defaultLogger *Logger

// New builds a logger writing to w.
func New(config Config, w io.Writer) *Logger {
	return &Logger{config: config, zl: build(config, w)}
}

// Initialize sets up the default logger
func Initialize(config Config) error {
	defaultLogger = New(config, os.Stderr)
	return nil
}

func build(config Config, w io.Writer) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "message",
		StacktraceKey:    "",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      levelEncoder(config.UseColor && !config.JSON, !config.JSON),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	// Caller info only for debug and trace
	if config.Level <= DebugLevel {
		encCfg.CallerKey = "caller"
	}

	var enc zapcore.Encoder
	if config.JSON {
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(config.Level.zapLevel()))
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if config.Component != "" {
		zl = zl.Named(config.Component)
	}
	return zl
}

func levelEncoder(color, bracket bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := fromZapLevel(l).String()
		if color {
			switch fromZapLevel(l) {
			case TraceLevel:
				name = "\033[37m" + name + "\033[0m" // White
			case DebugLevel:
				name = "\033[36m" + name + "\033[0m" // Cyan
			case InfoLevel:
				name = "\033[32m" + name + "\033[0m" // Green
			case WarnLevel:
				name = "\033[33m" + name + "\033[0m" // Yellow
			case ErrorLevel:
				name = "\033[31m" + name + "\033[0m" // Red
			}
		}
		if bracket {
			name = "[" + name + "]"
		}
		enc.AppendString(name)
	}
}

// Log writes a log message
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}
	if ce := l.zl.Check(level.zapLevel(), message); ce != nil {
		zfields := make([]zap.Field, 0, len(fields))
		for _, f := range fields {
			zfields = append(zfields, zap.Any(f.Key, f.Value))
		}
		ce.Write(zfields...)
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	return Field{Key: "error", Value: err.Error()}
}

// Convenience functions for default logger
func Trace(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(TraceLevel, message, fields...)
	}
}

func Debug(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(DebugLevel, message, fields...)
	}
}

func Info(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(InfoLevel, message, fields...)
	} else {
		// Fallback to stderr if logger not initialized
		_, _ = fmt.Fprintf(os.Stderr, "[INFO] relinfo: %s\n", message)
	}
}

func Warn(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(WarnLevel, message, fields...)
	}
}

func Error(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(ErrorLevel, message, fields...)
	}
}

// SetOutput redirects the default logger to w.
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.zl = build(defaultLogger.config, w)
	}
}

// Sync flushes the default logger.
func Sync() {
	if defaultLogger != nil {
		_ = defaultLogger.Sync()
	}
}
